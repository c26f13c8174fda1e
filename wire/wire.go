// Package wire implements the binary protocol the display server
// speaks over its Unix domain socket. Every message carries an 8-byte
// header: the ID of the window the message concerns (0 for
// display-level messages) and a combined size/opcode word. Arguments
// are 32-bit words in host byte order; strings and byte arrays are
// length-prefixed and padded to word boundaries. Shared-memory buffers
// travel out of band as file descriptors.
package wire

// padding returns the number of bytes needed to pad size to a 32-bit
// boundary.
func padding(size uint32) uint32 {
	return (4 - (size % 4)) % 4
}
