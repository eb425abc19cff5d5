// clipbridge: copy on one device, read it on all of them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "clipbridge",
		Short: "Sync copied text across devices",
		Long: `clipbridge watches the system clipboard and, after a short confirmation
window, appends each new clip to a list shared by every device linked to the
same identity.

Run "clipbridge watch" to start the capture daemon. Use "clipbridge list",
"add", "rm" and "status" from any shell. Link devices with "clipbridge link".

Config file search order (first found wins):
  /etc/clipbridge/clipbridge.toml
  $HOME/.config/clipbridge/clipbridge.toml
  path supplied via --config

All flags can be set via CLIPBRIDGE_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newWatchCmd(),
		newStatusCmd(),
		newSaveCmd(),
		newCancelCmd(),
		newListCmd(),
		newAddCmd(),
		newRmCmd(),
		newLinkCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("clipbridge %s\n", Version)
		},
	}
}
