package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"shelve/internal/config"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDenyList verifies that platform resolution produced at least one
// forbidden prefix. An empty deny-list would let a bad plan target
// system paths, so it fails the gate here rather than at apply time.
func CheckDenyList(cfg *config.Config) Result {
	const name = "Deny-list"

	prefixes := cfg.ForbiddenPrefixes()
	if len(prefixes) == 0 {
		return Result{Name: name, Detail: "no forbidden prefixes resolved for this platform"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d forbidden prefix(es)", len(prefixes))}
}

// CheckAuditJournal verifies that the audit journal can be appended to.
// A missing journal passes as long as its directory is writable; the
// journal is created on first append.
func CheckAuditJournal(path string) Result {
	const name = "Audit journal"

	if path == "" {
		return Result{Name: name, Detail: "no journal path configured"}
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.Mode().IsRegular() {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a regular file)", path)}
		}
		if err := unix.Access(path, unix.W_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: not writable: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (append ok)", path)}
	case os.IsNotExist(err):
		dir := filepath.Dir(path)
		if parent := CheckDirectoryAccess(name, dir); !parent.Passed {
			return parent
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
}
