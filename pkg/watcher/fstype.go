package watcher

// FilesystemType classifies the filesystem holding the watched file.
// Network and FUSE filesystems often drop inotify events, so the watcher
// polls on them instead.
type FilesystemType int

const (
	FSTypeUnknown FilesystemType = iota
	FSTypeLocal
	FSTypeNFS
	FSTypeSMB
	FSTypeSSHFS
	FSTypeFUSE
)

func (t FilesystemType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeNFS:
		return "nfs"
	case FSTypeSMB:
		return "smb"
	case FSTypeSSHFS:
		return "sshfs"
	case FSTypeFUSE:
		return "fuse"
	default:
		return "unknown"
	}
}

// Remote reports whether change notifications are unreliable on t.
func (t FilesystemType) Remote() bool {
	switch t {
	case FSTypeNFS, FSTypeSMB, FSTypeSSHFS, FSTypeFUSE:
		return true
	default:
		return false
	}
}

// detectFilesystemTypeFunc is swapped out in tests.
var detectFilesystemTypeFunc = detectFilesystemType

// DetectFilesystemType returns a best-effort classification of path's
// filesystem. A path that does not exist yet is classified by its parent.
func DetectFilesystemType(path string) FilesystemType {
	if path == "" {
		return FSTypeUnknown
	}
	return detectFilesystemTypeFunc(path)
}
