//go:build linux

package watcher

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Superblock magic numbers from statfs(2).
const (
	magicNFS  = 0x6969
	magicSMB  = 0x517b
	magicCIFS = 0xff534d42
	magicSMB2 = 0xfe534d42
	magicFUSE = 0x65735546
)

func detectFilesystemType(path string) FilesystemType {
	target := path
	if _, err := os.Stat(target); err != nil {
		target = filepath.Dir(target)
	}

	var st unix.Statfs_t
	if err := unix.Statfs(target, &st); err != nil {
		return FSTypeUnknown
	}

	switch uint32(st.Type) {
	case magicNFS:
		return FSTypeNFS
	case magicSMB, magicCIFS, magicSMB2:
		return FSTypeSMB
	case magicFUSE:
		return FSTypeFUSE
	default:
		return FSTypeLocal
	}
}
