// Package debug provides diagnostic output gated on TRC_DEBUG or --verbose,
// plus an optional rotated file log under the trace home directory.
package debug

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	enabled     = os.Getenv("TRC_DEBUG") != ""
	verboseMode = false
	quietMode   = false

	logMutex sync.Mutex
	fileLog  *lumberjack.Logger
)

func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quietMode
}

// SetLogFile mirrors debug output into a rotated file. Pass "" to disable.
func SetLogFile(path string) {
	logMutex.Lock()
	defer logMutex.Unlock()
	if path == "" {
		fileLog = nil
		return
	}
	fileLog = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
	}
}

func Logf(format string, args ...interface{}) {
	logMutex.Lock()
	l := fileLog
	logMutex.Unlock()
	if l != nil {
		fmt.Fprintf(l, format+"\n", args...)
	}
	if enabled || verboseMode {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// PrintNormal prints output unless quiet mode is enabled
func PrintNormal(format string, args ...interface{}) {
	if !quietMode {
		fmt.Printf(format, args...)
	}
}
