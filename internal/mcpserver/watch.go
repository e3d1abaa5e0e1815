package mcpserver

import (
	"context"
	"os"
	"time"

	"github.com/DiogoHD/LLM-and-ODC/internal/logging"
)

// WatchParent cancels the server when the process that started it goes away,
// so an editor restart does not leave orphaned servers behind. It polls the
// parent PID and never touches stdin, which belongs to the stdio transport.
func WatchParent(ctx context.Context, interval time.Duration, cancel context.CancelFunc) {
	ppid := os.Getppid()
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if os.Getppid() != ppid {
					logging.New("mcp").Warn("parent process exited, shutting down", "ppid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}
