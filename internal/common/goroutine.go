// -----------------------------------------------------------------------
// Safe Goroutine - Panic-protected goroutine wrappers
// -----------------------------------------------------------------------

package common

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/ternarybob/arbor"
)

// goroutineCounter tracks spawned goroutines for diagnostics
var goroutineCounter int64

// GetGoroutineCount returns the number of goroutines spawned via SafeGo
func GetGoroutineCount() int64 {
	return atomic.LoadInt64(&goroutineCounter)
}

// SafeGo runs a function in a goroutine with panic recovery.
// Panics are logged but don't crash the service. Use this for fire-and-forget
// work like session touches where failure should not be fatal.
func SafeGo(logger arbor.ILogger, name string, fn func()) {
	atomic.AddInt64(&goroutineCounter, 1)

	go func() {
		defer recoverGoroutine(logger, name)
		fn()
	}()
}

// SafeGoWithContext runs a function in a goroutine with panic recovery.
// The function is skipped entirely when the context is already cancelled;
// long-running functions are expected to watch the context themselves.
func SafeGoWithContext(ctx context.Context, logger arbor.ILogger, name string, fn func(ctx context.Context)) {
	atomic.AddInt64(&goroutineCounter, 1)

	go func() {
		defer recoverGoroutine(logger, name)

		select {
		case <-ctx.Done():
			if logger != nil {
				logger.Debug().Str("goroutine", name).Msg("Goroutine cancelled before start")
			}
			return
		default:
		}

		fn(ctx)
	}()
}

func recoverGoroutine(logger arbor.ILogger, name string) {
	if r := recover(); r != nil {
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		stackTrace := string(buf[:n])

		if logger != nil {
			logger.Error().
				Str("goroutine", name).
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", stackTrace).
				Msg("Recovered from panic in goroutine - continuing service operation")
		} else {
			fmt.Fprintf(os.Stderr, "PANIC in goroutine %s: %v\n%s\n", name, r, stackTrace)
		}
	}
}
