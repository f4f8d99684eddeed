package presence

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
)

// socketCandidates lists the Unix socket paths a Discord client may listen on.
func socketCandidates() []string {
	dir := os.TempDir()
	for _, env := range []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"} {
		if v := os.Getenv(env); v != "" {
			dir = v
			break
		}
	}

	paths := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		paths = append(paths, filepath.Join(dir, fmt.Sprintf("discord-ipc-%d", i)))
	}
	return paths
}

// DialLocal connects to the first Discord IPC socket that accepts.
func DialLocal(ctx context.Context) (net.Conn, error) {
	if runtime.GOOS == "windows" {
		// TODO: named pipe support (\\.\pipe\discord-ipc-N) needs a pipe dialer such as go-winio.
		return nil, fmt.Errorf("discord ipc is not supported on %s", runtime.GOOS)
	}

	var d net.Dialer
	var lastErr error
	for _, path := range socketCandidates() {
		conn, err := d.DialContext(ctx, "unix", path)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no discord ipc socket found: %w", lastErr)
}
