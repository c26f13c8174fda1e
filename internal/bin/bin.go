// Package bin contains utilities for dealing with binary representations.
package bin

import (
	"encoding/binary"
	"io"
	"unsafe"
)

// byteOrder is the host byte order. The protocol is only ever spoken
// between processes on the same machine, so host order is wire order.
var byteOrder binary.ByteOrder = binary.LittleEndian

func init() {
	n := uint32(1)
	b := (*[4]byte)(unsafe.Pointer(&n))
	if b[0] == 0 {
		byteOrder = binary.BigEndian
	}
}

func Bytes[T ~int32 | ~uint32](v T) [4]byte {
	var data [4]byte
	byteOrder.PutUint32(data[:], *(*uint32)(unsafe.Pointer(&v)))
	return data
}

func Value[T ~int32 | ~uint32](data [4]byte) T {
	v := byteOrder.Uint32(data[:])
	return *(*T)(unsafe.Pointer(&v))
}

func Read[T ~int32 | ~uint32](r io.Reader) (T, error) {
	var data [4]byte
	_, err := io.ReadFull(r, data[:])
	if err != nil {
		return 0, err
	}

	return Value[T](data), nil
}

func Write[T ~int32 | ~uint32](w io.Writer, v T) error {
	data := Bytes(v)
	n, err := w.Write(data[:])
	if (err == nil) && (n < len(data)) {
		return io.ErrShortWrite
	}
	return err
}
