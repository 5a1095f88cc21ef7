//go:build windows

package mumble

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

func unsafeSliceFromPtr(addr uintptr, length int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), length)
}

// windowsBackend maps the game's named shared-memory segment directly via
// the Windows file-mapping API (spec §6 "Windows: a named shared-memory
// segment").
type windowsBackend struct {
	handle windows.Handle
	view   uintptr
	buf    []byte
}

func openPlatformBackend(name string) (Backend, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("mumble: encode segment name: %w", err)
	}

	handle, err := windows.OpenFileMapping(windows.FILE_MAP_READ, false, namePtr)
	if err != nil {
		// Not fatal: the returned backend reports not-alive. It does not
		// retry OpenFileMapping, so a segment the game creates after this
		// call is not picked up by this backend.
		return &windowsBackend{}, nil
	}

	addr, err := windows.MapViewOfFile(handle, windows.FILE_MAP_READ, 0, 0, uintptr(minControlBlockSize))
	if err != nil {
		windows.CloseHandle(handle)
		return nil, fmt.Errorf("mumble: map view of file: %w", err)
	}

	buf := unsafeSliceFromPtr(addr, minControlBlockSize)
	return &windowsBackend{handle: handle, view: addr, buf: buf}, nil
}

func (b *windowsBackend) Probe() bool {
	return b.handle != 0 && b.view != 0
}

func (b *windowsBackend) Read() ([]byte, error) {
	if !b.Probe() {
		return nil, fmt.Errorf("mumble: shared-memory segment not mapped")
	}
	out := make([]byte, len(b.buf))
	copy(out, b.buf)
	return out, nil
}

func (b *windowsBackend) Close() error {
	if b.view != 0 {
		windows.UnmapViewOfFile(b.view)
	}
	if b.handle != 0 {
		windows.CloseHandle(b.handle)
	}
	return nil
}
