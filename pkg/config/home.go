package config

import (
	"os"
	"path/filepath"
	"sync"
)

const envHome = "WDAKIT_HOME"

var (
	homeOnce sync.Once
	homeDir  string
)

// GetHome returns the wdakit home directory.
//
// Resolution order:
//  1. $WDAKIT_HOME environment variable
//  2. Parent of the binary's directory (if binary is in <home>/bin/)
//  3. ~/.wdakit
//  4. Current working directory
func GetHome() string {
	homeOnce.Do(func() {
		homeDir = resolveHome()
	})
	return homeDir
}

// GetLogsDir returns <home>/logs.
func GetLogsDir() string {
	return filepath.Join(GetHome(), "logs")
}

func resolveHome() string {
	if env := os.Getenv(envHome); env != "" {
		return env
	}

	if execPath, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
			execPath = resolved
		}
		binDir := filepath.Dir(execPath)
		if filepath.Base(binDir) == "bin" {
			return filepath.Dir(binDir)
		}
	}

	if userHome, err := os.UserHomeDir(); err == nil {
		return filepath.Join(userHome, ".wdakit")
	}

	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}

// ResetHome resets the cached home directory (for testing).
func ResetHome() {
	homeOnce = sync.Once{}
	homeDir = ""
}
