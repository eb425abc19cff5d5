package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clipbridge/clipbridge/internal/platform"
)

func newAddCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Add a clip manually (from args or stdin)",
		Long: `Appends text to the shared clip list without going through the
clipboard. With no argument, reads stdin (like pbcopy):

  echo "meeting at 3" | clipbridge add`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runAdd(v, args) },
	}

	cmd.Flags().String("device", "", "device tag for the clip (default: auto-detect)")
	addStoreFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runAdd(v *viper.Viper, args []string) error {
	setupQuietLogging(v)

	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to add")
	}

	device := platform.Detect()
	if s := v.GetString("device"); s != "" {
		d, err := platform.ParseDevice(s)
		if err != nil {
			return err
		}
		device = d
	}

	ident, err := openIdentity(v)
	if err != nil {
		return err
	}
	gw, err := openGateway(v, ident)
	if err != nil {
		return err
	}

	clip, err := gw.Insert(context.Background(), text, device)
	if err != nil {
		return err
	}
	fmt.Printf("saved %s (%s)\n", clip.ID, clip.Device)
	return nil
}
