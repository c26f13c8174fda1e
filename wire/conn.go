package wire

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fenestra-os/display/internal/set"
)

func xdgRuntimeDir() string {
	dir, ok := os.LookupEnv("XDG_RUNTIME_DIR")
	if ok {
		return dir
	}
	return fmt.Sprintf("/var/run/user/%v", os.Getuid())
}

// SocketPath determines the path to the display server's Unix domain
// socket based on the contents of the $FENESTRA_DISPLAY environment
// variable. It does not attempt to determine if the value corresponds
// to an actual socket.
func SocketPath() string {
	v, ok := os.LookupEnv("FENESTRA_DISPLAY")
	if !ok {
		v = "fenestra-0"
	}
	if filepath.IsAbs(v) {
		return v
	}

	return filepath.Join(xdgRuntimeDir(), v)
}

// NewSocketPath attempts to generate a valid path for opening a new
// socket to listen on.
func NewSocketPath() (string, error) {
	dir := xdgRuntimeDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	names := make(set.Set[int], len(entries))
	for _, ent := range entries {
		after, ok := strings.CutPrefix(ent.Name(), "fenestra-")
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(after, 10, 0)
		if err != nil {
			continue
		}
		names.Add(int(n))
	}

	var num int
	for names.Has(num) {
		num++
	}

	return filepath.Join(dir, fmt.Sprintf("fenestra-%v", num)), nil
}

// Listen opens a listening socket at path, or at a freshly generated
// path when path is empty.
func Listen(path string) (*net.UnixListener, error) {
	if path == "" {
		p, err := NewSocketPath()
		if err != nil {
			return nil, fmt.Errorf("generate socket path: %w", err)
		}
		path = p
	}

	lis, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, err
	}
	return lis, nil
}

// Conn represents a low-level protocol connection.
type Conn struct {
	conn *net.UnixConn
}

// NewConn creates a new Conn that wraps c. After this is called, use
// the provided Close method to close c instead of calling its own
// Close method.
func NewConn(c *net.UnixConn) *Conn {
	return &Conn{
		conn: c,
	}
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Dial opens a connection to the display server socket based on the
// current environment.
func Dial() (*Conn, error) {
	s, err := net.Dial("unix", SocketPath())
	if err != nil {
		return nil, err
	}
	return NewConn(s.(*net.UnixConn)), nil
}
