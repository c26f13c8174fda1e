// Package xcursor loads cursor images from Xcursor theme files, so a
// display can use the cursor themes already installed on the system.
package xcursor

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/fenestra-os/display/gfx"
	"github.com/fenestra-os/display/internal/bin"
)

// ErrBadMagic indicates an unrecognized magic number when attempting
// to load a cursor.
var ErrBadMagic = errors.New("bad magic")

const (
	fileMagic = 0x72756358 // ASCII "Xcur", little-endian.

	chunkImage = 0xfffd0002

	fileHeaderLen  = 4 * 4
	imageHeaderLen = 9 * 4
)

// Image is one animation frame of a cursor.
type Image struct {
	NominalSize int
	Hotspot     image.Point
	Delay       time.Duration
	Image       *gfx.ARGB8888
}

// Cursor is a decoded cursor: one or more frames of a single nominal
// size.
type Cursor struct {
	Frames []*Image
}

func DecodeFile(path string, size int) (*Cursor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	return Decode(file, size)
}

// Decode decodes the cursor in r, keeping the frames whose nominal
// size is closest to size.
func Decode(r io.ReadSeeker, size int) (*Cursor, error) {
	d := decoder{r: r, br: bufio.NewReader(r)}
	return d.decode(size)
}

type decoder struct {
	r   io.ReadSeeker
	br  *bufio.Reader
	n   int
	err error
}

func (d *decoder) decode(size int) (c *Cursor, err error) {
	defer d.catch(&err)

	tocs := d.header()

	best := bestSize(tocs, size)
	if best == 0 {
		return nil, errors.New("no image chunks in cursor file")
	}

	var cur Cursor
	for _, toc := range tocs {
		if toc.Type != chunkImage || int(toc.Subtype) != best {
			continue
		}
		d.seekTo(int(toc.Position))
		cur.Frames = append(cur.Frames, d.image())
	}

	return &cur, nil
}

// bestSize picks the nominal size closest to the requested one among
// the file's image chunks.
func bestSize(tocs []fileToc, size int) int {
	var best int
	for _, toc := range tocs {
		if toc.Type != chunkImage {
			continue
		}
		n := int(toc.Subtype)
		if best == 0 || abs(n-size) < abs(best-size) {
			best = n
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (d *decoder) header() []fileToc {
	magic := d.uint32()
	if magic != fileMagic {
		d.throw(ErrBadMagic)
	}
	hsize := d.uint32()
	d.uint32() // Version.
	ntoc := int(d.uint32())
	d.seekTo(int(hsize))

	tocs := make([]fileToc, 0, ntoc)
	for i := 0; i < ntoc; i++ {
		tocs = append(tocs, fileToc{
			Type:     d.uint32(),
			Subtype:  d.uint32(),
			Position: d.uint32(),
		})
	}

	return tocs
}

// image decodes one image chunk, including its pixels. Xcursor pixels
// are packed ARGB words stored little-endian; they are repacked into
// host byte order.
func (d *decoder) image() *Image {
	hsize := d.uint32()
	if hsize != imageHeaderLen {
		d.throw(fmt.Errorf("unexpected image header size: %v", hsize))
	}
	typ := d.uint32()
	if typ != chunkImage {
		d.throw(fmt.Errorf("unexpected chunk type: %x", typ))
	}
	nominal := d.uint32()
	d.uint32() // Version.

	width := d.uint32()
	height := d.uint32()
	xhot := d.uint32()
	yhot := d.uint32()
	delay := d.uint32()

	if width > 0x7fff || height > 0x7fff {
		d.throw(fmt.Errorf("unreasonable cursor size: %vx%v", width, height))
	}

	img := gfx.NewARGB8888(image.Rect(0, 0, int(width), int(height)))
	buf := make([]byte, 4)
	for i := 0; i < len(img.Pix); i += 4 {
		_, err := io.ReadFull(d, buf)
		d.throw(err)
		word := bin.Bytes(gfx.ARGBColor(binary.LittleEndian.Uint32(buf)))
		copy(img.Pix[i:], word[:])
	}

	return &Image{
		NominalSize: int(nominal),
		Hotspot:     image.Pt(int(xhot), int(yhot)),
		Delay:       time.Duration(delay) * time.Millisecond,
		Image:       img,
	}
}

func (d *decoder) uint32() (v uint32) {
	buf := make([]byte, 4)
	_, err := io.ReadFull(d, buf)
	d.throw(err)
	return binary.LittleEndian.Uint32(buf)
}

func (d *decoder) Read(buf []byte) (int, error) {
	n, err := d.br.Read(buf)
	d.n += n
	return n, err
}

func (d *decoder) seekTo(n int) {
	diff := n - d.n
	if diff < 0 {
		d.throw(errors.New("chunk positions out of order"))
	}
	if diff == 0 {
		return
	}

	if diff <= d.br.Buffered() {
		disc, err := d.br.Discard(diff)
		d.n += disc
		d.throw(err)
		return
	}

	_, err := d.r.Seek(int64(n), io.SeekStart)
	d.throw(err)
	d.br.Reset(d.r)
	d.n = n
}

type fileToc struct {
	Type     uint32
	Subtype  uint32
	Position uint32
}

type decoderError struct {
	err error
}

func (d *decoder) throw(err error) {
	if err != nil {
		panic(decoderError{err: err})
	}
}

func (d *decoder) catch(err *error) {
	switch r := recover().(type) {
	case decoderError:
		*err = r.err
	case nil:
	default:
		panic(r)
	}
}
