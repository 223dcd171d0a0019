// Package syncer moves issue state between a project's committed JSONL log
// and the per-user SQLite cache. The log is the replication channel: git
// carries it between machines, and a sync pass folds whatever arrived into
// the cache before any command reads or writes.
package syncer

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/tracehq/trace/internal/debug"
	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
	"github.com/tracehq/trace/internal/types"
)

// Sync brings the cache up to date for the repository containing dir.
// Outside a git repository it is a silent no-op and returns (nil, nil).
//
// The pass runs in order: resolve project identity, adopt or mint the stable
// UUID, merge issues filed under a stale handle for the same working copy,
// then import the log if its mtime is newer than the recorded last sync.
func Sync(ctx context.Context, store *sqlite.Store, dir string) (*project.Info, error) {
	info, err := project.Detect(dir)
	if errors.Is(err, project.ErrNotInRepo) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	initialized := project.IsInitialized(info.Path)
	if initialized {
		uuid := project.ReadUUID(info.StateDir())
		if uuid == "" {
			uuid, err = project.GenerateUUID()
			if err != nil {
				return nil, err
			}
			if err := project.WriteUUID(info.StateDir(), uuid); err != nil {
				return nil, err
			}
			debug.Logf("sync: minted uuid %s for %s", uuid, info.Handle)
		}
		if err := store.UpsertProject(ctx, &types.Project{
			Handle:      info.Handle,
			Name:        info.Name,
			CurrentPath: info.Path,
			UUID:        uuid,
		}); err != nil {
			return nil, err
		}
	}

	if err := autoMerge(ctx, store, info); err != nil {
		return nil, err
	}

	if !initialized {
		return info, nil
	}

	fi, err := os.Stat(info.LogPath())
	if err != nil {
		return info, nil // log vanished between the init check and here
	}
	lastSync, err := store.LastSyncTime(ctx, info.Handle)
	if err != nil {
		return nil, err
	}
	if !lastSync.IsZero() && !fi.ModTime().After(lastSync) {
		return info, nil
	}

	stats, err := Import(ctx, store, info.LogPath(), info.Handle)
	if err != nil {
		return nil, err
	}
	debug.Logf("sync %s: created=%d updated=%d skipped=%d errors=%d",
		info.Handle, stats.Created, stats.Updated, stats.Skipped, stats.Errors)

	if err := store.SetLastSyncTime(ctx, info.Handle, fi.ModTime()); err != nil {
		return nil, err
	}
	return info, nil
}

// autoMerge folds issues filed under an out-of-date handle into the current
// one. A handle goes stale when a local-only repository gains a remote, or a
// remote URL changes; the working-copy path ties old and new together.
func autoMerge(ctx context.Context, store *sqlite.Store, info *project.Info) error {
	handles, err := store.DistinctHandles(ctx)
	if err != nil {
		return err
	}
	for _, old := range handles {
		if old == info.Handle {
			continue
		}
		same := old == info.Path
		if !same {
			p, err := store.GetProject(ctx, old)
			if err != nil && !errors.Is(err, sqlite.ErrNotFound) {
				return err
			}
			same = err == nil && p.CurrentPath == info.Path
		}
		if !same {
			continue
		}

		n, err := store.RewriteProjectReferences(ctx, old, info.Handle)
		if err != nil {
			return err
		}
		debug.Logf("sync: merged %d issues from stale handle %s into %s", n, old, info.Handle)

		if err := store.DeleteProject(ctx, old); err != nil && !errors.Is(err, sqlite.ErrNotFound) {
			return err
		}
		if err := store.UpsertProject(ctx, &types.Project{
			Handle:      info.Handle,
			Name:        info.Name,
			CurrentPath: info.Path,
		}); err != nil {
			return err
		}
	}
	return nil
}

// ProjectPath returns the working-copy path recorded for a handle, repairing
// the registry row opportunistically when the stored path is corrupted (a
// URL where a path belongs) and the current directory turns out to be that
// very project.
func ProjectPath(ctx context.Context, store *sqlite.Store, handle string) (string, error) {
	p, err := store.GetProject(ctx, handle)
	if err == nil {
		if filepath.IsAbs(p.CurrentPath) {
			return p.CurrentPath, nil
		}
		cwd, cwdErr := os.Getwd()
		if cwdErr == nil {
			if info, detErr := project.Detect(cwd); detErr == nil && info.Handle == handle {
				p.CurrentPath = info.Path
				if upErr := store.UpsertProject(ctx, p); upErr != nil {
					return "", upErr
				}
				return info.Path, nil
			}
		}
		return "", errors.New("project path for " + handle + " is corrupted and could not be recovered")
	}
	if !errors.Is(err, sqlite.ErrNotFound) {
		return "", err
	}
	if filepath.IsAbs(handle) {
		if _, statErr := os.Stat(handle); statErr == nil {
			return handle, nil
		}
	}
	return "", err
}
