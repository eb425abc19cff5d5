package clip

import (
	"log/slog"

	"golang.design/x/clipboard"
)

// systemSource reads text from the OS clipboard via golang.design/x/clipboard.
type systemSource struct{}

// System returns the platform clipboard source, or the headless stub if the
// display environment is unavailable (e.g. a server without X11 or Wayland).
// clipboard.Init is called here rather than in init() so that sub-commands
// that never touch the clipboard don't trigger the warning.
func System() Source {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return headlessSource{}
	}
	return systemSource{}
}

func (systemSource) Name() string { return "system clipboard" }

func (systemSource) Read() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

func (systemSource) Close() {}

// Write places text on the OS clipboard. Used by the CLI copy convenience,
// never by the capture path.
func Write(text string) error {
	if err := clipboard.Init(); err != nil {
		return ErrSecurityRestricted
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
