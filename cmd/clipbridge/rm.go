package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRmCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete clips by id",
		Long: `Deletes clips from the shared list. Only clips belonging to the
active identity can be removed; use "clipbridge list --json" for full ids.`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runRm(v, args) },
	}

	addStoreFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runRm(v *viper.Viper, args []string) error {
	setupQuietLogging(v)

	ident, err := openIdentity(v)
	if err != nil {
		return err
	}
	gw, err := openGateway(v, ident)
	if err != nil {
		return err
	}

	for _, id := range args {
		if err := gw.Delete(context.Background(), id); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", id)
	}
	return nil
}
