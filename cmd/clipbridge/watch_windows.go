//go:build windows

package main

import "context"

// watchVisibilitySignals is a no-op on Windows: there are no user signals to
// map, so the surface keeps whatever visibility it started with.
func watchVisibilitySignals(_ context.Context, _ func(visible bool)) {}
