//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// watchVisibilitySignals maps SIGUSR1 → visible and SIGUSR2 → hidden so a
// desktop session script (lock hook, compositor idle handler) can drive the
// daemon's foreground/background policy.
func watchVisibilitySignals(ctx context.Context, set func(visible bool)) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1, syscall.SIGUSR2)
	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-ch:
				set(sig == syscall.SIGUSR1)
			}
		}
	}()
}
