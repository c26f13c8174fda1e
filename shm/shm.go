// Package shm provides helpers for dealing with shared memory.
package shm

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Create makes an anonymous shared-memory file. The file is unlinked
// immediately; it lives as long as a descriptor or mapping does.
func Create() (*os.File, error) {
	path := fmt.Sprintf("/dev/shm/fenestra-buffer-%v", time.Now().UnixNano())

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return nil, err
	}

	return file, os.Remove(path)
}

type Mmap []byte

// MapShared maps size bytes of file with MAP_SHARED.
func MapShared(file *os.File, size int, prot int) (mmap Mmap, err error) {
	sc, err := file.SyscallConn()
	if err != nil {
		return nil, err
	}

	cerr := sc.Control(func(fd uintptr) {
		m, merr := unix.Mmap(int(fd), 0, size, prot, unix.MAP_SHARED)
		mmap, err = Mmap(m), merr
	})
	if cerr != nil {
		return nil, cerr
	}

	return mmap, err
}

func (mmap Mmap) Unmap() error {
	return unix.Munmap(mmap)
}
