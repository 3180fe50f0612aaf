// FILE: lixenwraith/propbind/security_unix.go
//go:build unix

package propbind

import (
	"fmt"
	"os"
	"syscall"
)

func checkOwnership(path string) error {
	fileInfo, err := os.Stat(path)
	if err != nil {
		// Missing files are reported by the parser
		return nil
	}
	if stat, ok := fileInfo.Sys().(*syscall.Stat_t); ok {
		if stat.Uid != uint32(os.Geteuid()) {
			return fmt.Errorf("config file '%s' is not owned by current user (file UID: %d, process UID: %d)",
				path, stat.Uid, os.Geteuid())
		}
	}
	return nil
}
