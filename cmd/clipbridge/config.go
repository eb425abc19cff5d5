package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clipbridge/clipbridge/internal/identity"
	"github.com/clipbridge/clipbridge/internal/logging"
	"github.com/clipbridge/clipbridge/internal/store"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and CLIPBRIDGE_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → CLIPBRIDGE_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("clipbridge")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/clipbridge/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/clipbridge", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("CLIPBRIDGE")
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addStoreFlags adds the backend and identity flags shared by every command
// that touches the persistence gateway.
func addStoreFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("supabase-url", "", "Supabase project URL")
	f.String("supabase-key", "", "Supabase anon/service key")
	f.String("state", "", "identity state file (default: user config dir)")
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default info)")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) {
	format := logging.ParseFormat(v.GetString("log-format"))
	level := logging.ParseLevel(v.GetString("log-level"))
	logging.Setup(format, level)
}

// setupQuietLogging is setupLogging for one-shot commands: results go to
// stdout, so stderr stays silent below Warn.
func setupQuietLogging(v *viper.Viper) {
	format := logging.ParseFormat(v.GetString("log-format"))
	level := logging.Quiet(logging.ParseLevel(v.GetString("log-level")))
	logging.Setup(format, level)
}

// openIdentity loads the identity store named by --state (or the default
// location), resolving and persisting the active identity.
func openIdentity(v *viper.Viper) (*identity.Store, error) {
	path := v.GetString("state")
	if path == "" {
		var err error
		path, err = identity.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return identity.Open(path)
}

// openGateway builds the persistence gateway from viper config. A gateway
// without credentials is returned degraded, not rejected: read commands stay
// usable offline.
func openGateway(v *viper.Viper, ident store.Identity) (*store.Gateway, error) {
	return store.New(v.GetString("supabase-url"), v.GetString("supabase-key"), ident)
}
