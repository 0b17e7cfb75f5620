package exeio

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// reservedNames are the short names the bunland tool itself ships
// under. A process invoked by one of them is the launcher, not a
// standalone build, and skips the embedded-graph check entirely.
var reservedNames = []string{"bunland", "bunland-debug"}

// InvokedAsLauncher reports whether this process was started under one
// of the reserved launcher names.
func InvokedAsLauncher() bool {
	if len(os.Args) == 0 || os.Args[0] == "" {
		return false
	}
	name := filepath.Base(os.Args[0])
	if runtime.GOOS == "windows" {
		name = strings.TrimSuffix(strings.ToLower(name), ".exe")
	}
	for _, reserved := range reservedNames {
		if name == reserved {
			return true
		}
	}
	return false
}

// SelfPath resolves the absolute, symlink-free path of the running
// executable. os.Executable covers every platform bunland builds for;
// if it fails (stripped /proc, unusual exec environments) the invoked
// name is resolved the way a shell would, directly or via PATH.
func SelfPath() (string, error) {
	if p, err := os.Executable(); err == nil {
		return normalizePath(p), nil
	}
	if len(os.Args) == 0 || os.Args[0] == "" {
		return "", fmt.Errorf("current executable not found")
	}
	argv0 := os.Args[0]
	if strings.ContainsAny(argv0, `/\`) {
		return normalizePath(argv0), nil
	}
	p, err := searchPath(argv0)
	if err != nil {
		return "", fmt.Errorf("current executable not found: %w", err)
	}
	return normalizePath(p), nil
}

// normalizePath makes a path absolute and resolves symlinks, keeping
// the input when either step fails.
func normalizePath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	return p
}

// searchPath walks the PATH entries for name and returns the first
// regular executable file found. On windows the PATHEXT extensions are
// tried for names given without one.
func searchPath(name string) (string, error) {
	exts := []string{""}
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		pathext := os.Getenv("PATHEXT")
		if pathext == "" {
			pathext = ".COM;.EXE;.BAT;.CMD"
		}
		for _, ext := range strings.Split(pathext, ";") {
			if ext != "" {
				exts = append(exts, strings.ToLower(ext))
			}
		}
	}

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			dir = "."
		}
		for _, ext := range exts {
			candidate := filepath.Join(dir, name+ext)
			info, err := os.Stat(candidate)
			if err != nil || info.IsDir() {
				continue
			}
			if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
				continue
			}
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s not found in PATH", name)
}
