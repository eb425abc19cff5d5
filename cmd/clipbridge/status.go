package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clipbridge/clipbridge/internal/ipc"
	"github.com/clipbridge/clipbridge/internal/message"
	"github.com/clipbridge/clipbridge/internal/wire"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the running daemon's state",
		Long: `Displays the watch daemon's identity, pending clip, countdown and
per-device clip counts, queried over the local IPC socket.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runStatus(v) },
	}

	cmd.Flags().Bool("json", false, "output raw JSON")
	addConfigFlag(cmd)

	return cmd
}

func runStatus(v *viper.Viper) error {
	if !ipc.IsRunning() {
		return fmt.Errorf("no clipbridge daemon running (socket %s)", ipc.SocketPath())
	}

	resp, err := ipcRequest(&message.Message{Type: message.TypeStatus})
	if err != nil {
		return err
	}

	if v.GetBool("json") {
		enc, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(enc))
		return nil
	}

	printStatus(resp)
	return nil
}

func printStatus(resp *message.Message) {
	w := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Version:\t%s\n", resp.Version)
	fmt.Fprintf(w, "Identity:\t%s\n", resp.Identity)
	if resp.Email != "" {
		fmt.Fprintf(w, "Linked email:\t%s\n", resp.Email)
	}
	fmt.Fprintf(w, "Device:\t%s\n", resp.Device)
	fmt.Fprintf(w, "Surface:\t%s\n", visibleWord(resp.Visible))
	fmt.Fprintf(w, "Uptime:\t%s\n", (time.Duration(resp.Uptime) * time.Second).String())

	if p := resp.Pending; p != nil {
		fmt.Fprintf(w, "Pending clip:\t%s\n", truncate(p.Text, 48))
		fmt.Fprintf(w, "Saves in:\t%ds\n", p.RemainingSeconds)
	} else {
		fmt.Fprintf(w, "Pending clip:\t(none)\n")
	}

	for tag, n := range resp.Counts {
		fmt.Fprintf(w, "Clips (%s):\t%d\n", tag, n)
	}
	_ = w.Flush()
}

// ipcRequest performs one request/response exchange with the daemon.
func ipcRequest(req *message.Message) (*message.Message, error) {
	conn, err := ipc.Dial()
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}
	defer conn.Close()

	wc := wire.New(conn)
	if err := wc.WriteMsg(req); err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	wc.SetReadDeadline(5 * time.Second)
	resp, err := wc.ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}
	if resp.Type == message.TypeError {
		return nil, fmt.Errorf("daemon: %s", resp.Error)
	}
	return resp, nil
}

func visibleWord(visible bool) string {
	if visible {
		return "visible"
	}
	return "hidden"
}

// truncate shortens s to n runes. Clips are arbitrary text, so cutting on
// byte offsets would split multibyte characters.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
