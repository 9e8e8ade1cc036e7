package session

import (
	"fmt"
	"hash/fnv"
	"net"
	"os"
	"path/filepath"
	"time"
)

// Name computes the default session name for cwd: a hex FNV-1a hash of
// its absolute path. Two processes started in the same directory (even
// via different relative paths) compute the same name.
func Name(cwd string) (string, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("session: resolve cwd: %w", err)
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(abs))
	return fmt.Sprintf("%x", h.Sum64()), nil
}

// SocketPath returns the local-socket path for name under the
// platform's temp directory, namespaced by appName so unrelated
// sessions of other programs never collide.
func SocketPath(appName, name string) string {
	return filepath.Join(os.TempDir(), appName, name)
}

// Probe reports whether a server is already listening on path, by
// attempting a short-timeout connect. A dangling socket file left by a
// crashed server (connection refused) is treated as "no server" rather
// than an error.
func Probe(path string) bool {
	conn, err := net.DialTimeout("unix", path, 200*time.Millisecond)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// EnsureSocketDir creates the directory holding a session's socket
// path, if it doesn't already exist.
func EnsureSocketDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o700)
}

// RemoveStaleSocket removes a socket file at path left behind by a
// server that exited without cleaning up (Probe already confirmed no
// live server answers it). A listener bind then reuses the path.
func RemoveStaleSocket(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
