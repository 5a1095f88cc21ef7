//go:build !windows

package mumble

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// posixBackend maps a file-backed mirror of the control block (spec §6:
// "a file-backed mirror on non-Windows hosts"). A helper process (outside
// this module's scope) bridges the game's real shared memory into this
// file on non-Windows hosts; jokolay itself only ever reads it.
type posixBackend struct {
	path string
	file *os.File
	data []byte
}

func mirrorPath(name string) string {
	return fmt.Sprintf("/dev/shm/%s", name)
}

func openPlatformBackend(name string) (Backend, error) {
	return &posixBackend{path: mirrorPath(name)}, nil
}

func (b *posixBackend) Probe() bool {
	info, err := os.Stat(b.path)
	return err == nil && info.Size() >= minControlBlockSize
}

func (b *posixBackend) Read() ([]byte, error) {
	if b.file == nil {
		f, err := os.Open(b.path)
		if err != nil {
			return nil, fmt.Errorf("mumble: open mirror %s: %w", b.path, err)
		}
		data, err := unix.Mmap(int(f.Fd()), 0, minControlBlockSize, unix.PROT_READ, unix.MAP_SHARED)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("mumble: mmap mirror %s: %w", b.path, err)
		}
		b.file, b.data = f, data
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out, nil
}

func (b *posixBackend) Close() error {
	if b.data != nil {
		unix.Munmap(b.data)
	}
	if b.file != nil {
		return b.file.Close()
	}
	return nil
}
