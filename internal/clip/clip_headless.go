package clip

// headlessSource stands in when no display server is reachable. Every read
// fails with ErrSecurityRestricted, which the poller suppresses, so a daemon
// started in a headless session stays quiet until the environment changes.
type headlessSource struct{}

func (headlessSource) Name() string { return "headless (no-op)" }

func (headlessSource) Read() (string, error) {
	return "", ErrSecurityRestricted
}

func (headlessSource) Close() {}
