package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clipbridge/clipbridge/internal/ipc"
	"github.com/clipbridge/clipbridge/internal/message"
)

// newSaveCmd and newCancelCmd are the CLI equivalents of the toast buttons:
// finalize the pending clip right now, or throw it away.

func newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save the daemon's pending clip immediately",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return ipcControl(message.TypeSave)
		},
	}
}

func newCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Discard the daemon's pending clip",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return ipcControl(message.TypeCancel)
		},
	}
}

func ipcControl(t message.Type) error {
	if !ipc.IsRunning() {
		return fmt.Errorf("no clipbridge daemon running (socket %s)", ipc.SocketPath())
	}
	_, err := ipcRequest(&message.Message{Type: t})
	return err
}
