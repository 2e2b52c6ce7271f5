package polls

import (
	"context"
	"github.com/lordralex/rallypoint/api/logger"
	"time"
)

// RunJanitor sweeps expired polls out of the store every interval until ctx
// is done.
func RunJanitor(ctx context.Context, store *Store, interval time.Duration) {
	timer := time.NewTicker(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if removed := store.Sweep(); removed > 0 {
				logger.Debug().Printf("Swept %d idle polls, %d left\n", removed, store.Len())
			}
		}
	}
}
