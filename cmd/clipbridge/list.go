package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clipbridge/clipbridge/internal/clip"
	"github.com/clipbridge/clipbridge/internal/store"
)

func newListCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List synced clips, newest first",
		Long: `Queries the shared clip list for the active identity.

Use --device to show only clips from one device class, --follow to keep the
snapshot updating as other devices sync, --copy to place the newest matching
clip on this machine's clipboard (the paste half of the bridge).`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runList(v) },
	}

	f := cmd.Flags()
	f.String("device", "all", "device filter: all|Windows|Android|Unknown")
	f.Int("limit", store.DefaultQueryLimit, "maximum clips to show")
	f.Bool("json", false, "output raw JSON")
	f.Bool("follow", false, "keep the list updating until interrupted")
	f.Bool("copy", false, "copy the newest matching clip to the local clipboard")
	addStoreFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runList(v *viper.Viper) error {
	setupQuietLogging(v)

	filter, err := store.ParseFilter(v.GetString("device"))
	if err != nil {
		return err
	}

	ident, err := openIdentity(v)
	if err != nil {
		return err
	}
	gw, err := openGateway(v, ident)
	if err != nil {
		return err
	}

	jsonOut := v.GetBool("json")

	if v.GetBool("follow") {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		unsub := gw.Subscribe(ctx, filter, func(clips []store.Clip) {
			printClips(clips, jsonOut)
		})
		defer unsub()
		<-ctx.Done()
		return nil
	}

	clips, err := gw.Query(context.Background(), filter, v.GetInt("limit"))
	if err != nil {
		return err
	}

	if v.GetBool("copy") {
		if len(clips) == 0 {
			return fmt.Errorf("no clips to copy")
		}
		if err := clip.Write(clips[0].Text); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Printf("copied %s to clipboard\n", shortID(clips[0].ID))
		return nil
	}

	printClips(clips, jsonOut)
	return nil
}

func printClips(clips []store.Clip, jsonOut bool) {
	if jsonOut {
		enc, _ := json.MarshalIndent(clips, "", "  ")
		fmt.Println(string(enc))
		return
	}
	if len(clips) == 0 {
		fmt.Println("No clips yet. Copy some text while the daemon is running.")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tDEVICE\tWHEN\tTEXT\n")
	fmt.Fprintf(tw, "--\t------\t----\t----\n")
	for _, c := range clips {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			shortID(c.ID), c.Device, fmtAge(c.Timestamp), oneLine(c.Text, 60),
		)
	}
	_ = tw.Flush()
}

// shortID keeps listings readable; rm accepts the full ID from --json output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// oneLine flattens whitespace and caps the result at limit runes.
func oneLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	return truncate(s, limit)
}

func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	if age < 24*time.Hour {
		return t.Local().Format("15:04:05")
	}
	return t.Local().Format("2006-01-02")
}
