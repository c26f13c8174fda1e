package shm

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	ximage "deedles.dev/ximage/format"
	"golang.org/x/sys/unix"
)

// ImageBuffer is a shared-memory pixel buffer. Clients draw into it
// locally and hand the backing file to the server, which maps the same
// pages to composite the pixels without copying them over the socket.
type ImageBuffer struct {
	w, h int32
	file *os.File
	mmap Mmap
}

func NewImageBuffer(w, h int32) (s *ImageBuffer, err error) {
	defer func() {
		if err != nil {
			s.Destroy()
		}
	}()

	s = &ImageBuffer{
		w: w,
		h: h,
	}
	size := s.Stride() * s.h

	file, err := Create()
	if err != nil {
		return s, fmt.Errorf("create SHM file: %w", err)
	}
	s.file = file
	s.file.Truncate(int64(size))

	mmap, err := MapShared(file, int(size), unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		return s, fmt.Errorf("mmap SHM file: %w", err)
	}
	s.mmap = mmap

	return s, nil
}

func (s *ImageBuffer) Destroy() {
	if s.mmap != nil {
		s.mmap.Unmap()
	}
	if s.file != nil {
		s.file.Close()
	}
}

// File returns the backing file, suitable for passing across a socket.
func (s *ImageBuffer) File() *os.File {
	return s.file
}

func (s *ImageBuffer) Stride() int32 {
	return s.w * 4
}

func (s *ImageBuffer) Len() int32 {
	return s.Stride() * s.h
}

func (s *ImageBuffer) Bounds() image.Rectangle {
	return image.Rect(
		0,
		0,
		int(s.w),
		int(s.h),
	)
}

func (s *ImageBuffer) Image() draw.Image {
	return &ximage.Image{
		Format: ximage.ARGB8888,
		Rect:   s.Bounds(),
		Pix:    s.mmap,
	}
}
