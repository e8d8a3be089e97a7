// Package bootstrap performs the driver's startup housekeeping: making
// sure the output directories from spec.md §6 exist, and raising the
// process's scheduling priority the way a real-time-ish serial driver
// wants to run ahead of everything else on the box.
package bootstrap

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// EnsureDirs creates any of dirs that don't already exist.
func EnsureDirs(dirs ...string) error {
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("bootstrap: mkdir %s: %w", d, err)
		}
	}
	return nil
}

// RaisePriority sets the process's nice value to -delta (raising
// scheduling priority above the default of 0). Without the privilege to
// lower the nice value the call returns an error. Failure is not fatal — an unprivileged driver
// simply runs at the default priority — so callers should log, not
// abort, on a non-nil return.
func RaisePriority(delta int) error {
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, -delta); err != nil {
		return fmt.Errorf("bootstrap: setpriority: %w", err)
	}
	return nil
}
