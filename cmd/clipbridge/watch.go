package main

import (
	"context"
	"log/slog"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clipbridge/clipbridge/internal/capture"
	"github.com/clipbridge/clipbridge/internal/clip"
	"github.com/clipbridge/clipbridge/internal/heartbeat"
	"github.com/clipbridge/clipbridge/internal/identity"
	"github.com/clipbridge/clipbridge/internal/ipc"
	"github.com/clipbridge/clipbridge/internal/message"
	"github.com/clipbridge/clipbridge/internal/platform"
	"github.com/clipbridge/clipbridge/internal/poller"
	"github.com/clipbridge/clipbridge/internal/store"
	"github.com/clipbridge/clipbridge/internal/visibility"
	"github.com/clipbridge/clipbridge/internal/wire"
)

func newWatchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the clipboard capture daemon",
		Long: `Watches the system clipboard. Each new clip starts a 10-second
confirmation countdown; unless cancelled (clipbridge cancel, or the running
daemon's IPC), the text is appended to the shared list. While the surface is
hidden, clips are saved immediately — a countdown nobody can see is pointless.

SIGUSR1 marks the surface visible, SIGUSR2 hidden (for session scripts).`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runWatch(v) },
	}

	f := cmd.Flags()
	f.String("device", "", "device tag for saved clips (default: auto-detect)")
	f.Bool("hidden", false, "start with the surface considered hidden")
	addStoreFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runWatch(v *viper.Viper) error {
	setupLogging(v)

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

	visible := !v.GetBool("hidden")
	slog.Info("clipbridge watch starting",
		"version", Version,
		"identity", ident.Active(),
		"device", device,
		"visible", visible,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source := clip.System()
	defer source.Close()

	p := poller.New(source)

	vis := visibility.New(visible)
	vis.OnFocusNudge(p.Nudge)

	mgr := capture.New(func(text string) {
		// Empty payload means "nothing was pending" — not a clip.
		if text == "" {
			return
		}
		saved, err := gw.Insert(ctx, text, device)
		if err != nil {
			slog.Error("clip save failed", "err", err)
			return
		}
		slog.Info("clip saved", "id", saved.ID, "device", saved.Device, "chars", len(text))
	}, capture.WithInitialVisibility(visible))

	go mgr.Run(ctx)
	go p.Run(ctx)

	// Poller → capture timer.
	clips, cancelClips := p.Subscribe()
	defer cancelClips()
	go func() {
		for text := range clips {
			mgr.Offer(text)
		}
	}()

	// Visibility signals drive both the tracker and the capture policy.
	watchVisibilitySignals(ctx, func(visible bool) {
		vis.Set(visible)
		mgr.SetVisible(visible)
	})

	hb := heartbeat.New(gw, vis.Visible)
	hb.Start()
	defer hb.Stop()

	// Returning to the foreground pings the store straight away.
	edges, cancelEdges := vis.BecameVisible()
	defer cancelEdges()
	go func() {
		for range edges {
			hb.Nudge()
		}
	}()

	go logCaptureEvents(mgr)

	d := &daemon{
		mgr:    mgr,
		gw:     gw,
		ident:  ident,
		device: device,
		vis:    vis,
		start:  time.Now(),
	}
	if ln, err := ipc.Listen(); err != nil {
		slog.Warn("IPC socket unavailable", "err", err)
	} else {
		slog.Info("IPC socket listening", "path", ipc.SocketPath())
		go d.serveIPC(ctx, ln)
		go func() {
			<-ctx.Done()
			_ = ln.Close()
		}()
	}

	<-ctx.Done()
	slog.Info("clipbridge watch stopping")
	return nil
}

// daemon bundles the live components for the IPC endpoints.
type daemon struct {
	mgr    *capture.Manager
	gw     *store.Gateway
	ident  *identity.Store
	device platform.Device
	vis    *visibility.Tracker
	start  time.Time
}

// logCaptureEvents narrates the state machine for the terminal user. This is
// the daemon's toast equivalent: the countdown lines are the confirmation
// window, and "clipbridge cancel" is the cancel button.
func logCaptureEvents(mgr *capture.Manager) {
	events, cancel := mgr.Subscribe()
	defer cancel()
	for ev := range events {
		switch ev.Kind {
		case capture.KindDetected:
			slog.Info("clip detected", "chars", len(ev.Text))
		case capture.KindTick:
			slog.Debug("countdown", "remaining", ev.Seconds)
		case capture.KindCompleted:
			if ev.Text != "" {
				slog.Debug("countdown complete")
			}
		case capture.KindCancelled:
			slog.Info("clip discarded")
		case capture.KindBackgroundSaved:
			slog.Info("clips saved while hidden", "count", ev.Count)
		}
	}
}

func (d *daemon) serveIPC(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go d.handleIPCConn(ctx, conn)
	}
}

func (d *daemon) handleIPCConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	wc := wire.New(conn)

	msg, err := wc.ReadMsg()
	if err != nil {
		return
	}

	switch msg.Type {
	case message.TypeStatus:
		snap := d.mgr.Snapshot()
		counts := make(map[string]int64)
		for dev, n := range d.gw.CountByDevice(ctx) {
			counts[string(dev)] = n
		}
		resp := &message.Message{
			Type:     message.TypeStatusResponse,
			Version:  Version,
			Identity: d.ident.Active(),
			Email:    d.ident.Email(),
			Device:   string(d.device),
			Visible:  d.vis.Visible(),
			Counts:   counts,
			Uptime:   int64(time.Since(d.start).Seconds()),
		}
		if snap.Pending != "" {
			resp.Pending = &message.PendingClip{
				Text:             snap.Pending,
				RemainingSeconds: snap.Seconds,
			}
		}
		_ = wc.WriteMsg(resp)

	case message.TypeSave:
		d.mgr.SaveNow()
		_ = wc.WriteMsg(&message.Message{Type: message.TypeStatusResponse})

	case message.TypeCancel:
		d.mgr.Cancel()
		_ = wc.WriteMsg(&message.Message{Type: message.TypeStatusResponse})

	default:
		_ = wc.WriteMsg(&message.Message{
			Type:  message.TypeError,
			Error: "unknown request type",
		})
	}
}
