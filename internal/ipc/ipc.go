// Package ipc provides the local socket channel used by CLI sub-commands
// (status, save, cancel) to talk to a running watch daemon instead of going
// to the remote store themselves.
package ipc

import (
	"net"
	"os"
	"path/filepath"
)

// SocketPath returns the platform-appropriate path for the IPC socket.
//
//   - $CLIPBRIDGE_SOCKET if set
//   - $XDG_RUNTIME_DIR/clipbridge.sock when available
//   - $TMPDIR/clipbridge.sock otherwise
func SocketPath() string {
	if s := os.Getenv("CLIPBRIDGE_SOCKET"); s != "" {
		return s
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "clipbridge.sock")
	}
	return filepath.Join(os.TempDir(), "clipbridge.sock")
}

// IsRunning reports whether a daemon appears to be listening on the IPC
// socket. A cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := net.Dial("unix", SocketPath())
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a net.Listener on the IPC socket path, removing any stale
// socket file from a previous (crashed) run first.
func Listen() (net.Listener, error) {
	path := SocketPath()
	_ = os.Remove(path)
	return net.Listen("unix", path)
}

// Dial connects to the daemon's IPC socket.
func Dial() (net.Conn, error) {
	return net.Dial("unix", SocketPath())
}
