package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newLinkCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Show or change the identity that scopes your clips",
		Long: `Without flags, prints the active identity so it can be entered on
another device.

--email derives a deterministic identity from the address: every device that
links the same email converges on the same clip set. --id overwrites the
identity outright with a value copied from another device.

Switching identity is a plain overwrite — clips saved under the previous
identity stay in the store but disappear from view.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runLink(v) },
	}

	f := cmd.Flags()
	f.String("email", "", "derive the identity from this email address")
	f.String("id", "", "set the identity to this exact value")
	f.String("state", "", "identity state file (default: user config dir)")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runLink(v *viper.Viper) error {
	setupQuietLogging(v)

	email := strings.TrimSpace(v.GetString("email"))
	id := strings.TrimSpace(v.GetString("id"))
	if email != "" && id != "" {
		return fmt.Errorf("--email and --id are mutually exclusive")
	}

	ident, err := openIdentity(v)
	if err != nil {
		return err
	}

	switch {
	case email != "":
		newID, err := ident.SetFromEmail(email)
		if err != nil {
			return err
		}
		fmt.Printf("identity: %s (derived from %s)\n", newID, ident.Email())
	case id != "":
		if err := ident.Set(id); err != nil {
			return err
		}
		fmt.Printf("identity: %s\n", ident.Active())
	default:
		fmt.Printf("identity: %s\n", ident.Active())
		if ident.Email() != "" {
			fmt.Printf("linked email: %s\n", ident.Email())
		}
	}
	return nil
}
