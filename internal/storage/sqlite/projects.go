package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tracehq/trace/internal/types"
)

// UpsertProject registers a project or refreshes its name, path, and UUID.
func (s *Store) UpsertProject(ctx context.Context, p *types.Project) error {
	if p.Handle == "" {
		return fmt.Errorf("project has no handle: %w", ErrInvalidID)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, current_path, uuid)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			current_path = excluded.current_path,
			uuid = COALESCE(excluded.uuid, projects.uuid)`,
		p.Handle, p.Name, p.CurrentPath, nullableString(p.UUID),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert project: %w", err)
	}
	return nil
}

// GetProject looks a project up by handle.
func (s *Store) GetProject(ctx context.Context, handle string) (*types.Project, error) {
	return s.projectBy(ctx, "id", handle)
}

// GetProjectByName looks a project up by its human name.
func (s *Store) GetProjectByName(ctx context.Context, name string) (*types.Project, error) {
	return s.projectBy(ctx, "name", name)
}

// GetProjectByUUID looks a project up by its stable repo UUID.
func (s *Store) GetProjectByUUID(ctx context.Context, uuid string) (*types.Project, error) {
	return s.projectBy(ctx, "uuid", uuid)
}

// GetProjectByPath looks a project up by its recorded working-copy path.
func (s *Store) GetProjectByPath(ctx context.Context, path string) (*types.Project, error) {
	return s.projectBy(ctx, "current_path", path)
}

func (s *Store) projectBy(ctx context.Context, column, value string) (*types.Project, error) {
	var p types.Project
	var uuid sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, current_path, uuid FROM projects WHERE `+column+` = ?`,
		value,
	).Scan(&p.Handle, &p.Name, &p.CurrentPath, &uuid)
	if err != nil {
		return nil, wrapNotFound(err, "project", value)
	}
	p.UUID = uuid.String
	return &p, nil
}

// ResolveProject finds a project by handle, human name, or working-copy
// path, tried in that order.
func (s *Store) ResolveProject(ctx context.Context, key string) (*types.Project, error) {
	for _, column := range []string{"id", "name", "current_path"} {
		p, err := s.projectBy(ctx, column, key)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("project %s: %w", key, ErrNotFound)
}

// DeleteProject removes a registry entry. Issues keep their project handle;
// only the registry row goes away.
func (s *Store) DeleteProject(ctx context.Context, handle string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, handle)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireRow(res, "project", handle)
}

// ListProjects returns every registered project ordered by handle.
func (s *Store) ListProjects(ctx context.Context) ([]*types.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, current_path, uuid FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*types.Project
	for rows.Next() {
		var p types.Project
		var uuid sql.NullString
		if err := rows.Scan(&p.Handle, &p.Name, &p.CurrentPath, &uuid); err != nil {
			return nil, err
		}
		p.UUID = uuid.String
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
