package mumble

// Backend abstracts the platform-specific shared-memory handle (spec §4.3
// "platform-specific backend"). Probe reports whether the segment is
// currently available without blocking; Read copies out the raw control
// block bytes.
type Backend interface {
	Probe() bool
	Read() ([]byte, error)
	Close() error
}

// openBackend opens the named shared-memory segment (Windows) or its
// file-backed mirror (POSIX). The platform split lives in shm_windows.go /
// shm_posix.go, mirrored on the teacher's per-OS build-tag files (e.g.
// display/banner/uptime_darwin.go).
func openBackend(name string) (Backend, error) {
	return openPlatformBackend(name)
}
