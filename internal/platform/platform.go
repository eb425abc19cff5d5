// Package platform classifies hosts into the closed set of device tags used
// to label persisted clips.
package platform

import (
	"fmt"
	"runtime"
	"strings"
)

// Device is a clip's originating device class. The set is closed: an
// unrecognized tag is a parse error, not a new category.
type Device string

const (
	Windows Device = "Windows"
	Android Device = "Android"
	Unknown Device = "Unknown"
)

// Devices lists every valid tag, in display order.
var Devices = []Device{Windows, Android, Unknown}

// Valid reports whether d is one of the known tags.
func (d Device) Valid() bool {
	switch d {
	case Windows, Android, Unknown:
		return true
	}
	return false
}

// ParseDevice converts a string to a Device, case-insensitively.
func ParseDevice(s string) (Device, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "windows":
		return Windows, nil
	case "android":
		return Android, nil
	case "unknown":
		return Unknown, nil
	}
	return "", fmt.Errorf("unknown device tag %q (valid: Windows, Android, Unknown)", s)
}

// Classify maps a browser user-agent string to a Device. Desktop systems
// (mac, linux) are consolidated into the Windows PC class, mirroring how
// synced clips were tagged before the daemon existed.
func Classify(userAgent string) Device {
	ua := strings.ToLower(userAgent)
	if strings.Contains(ua, "android") {
		return Android
	}
	for _, pc := range []string{"windows", "win", "mac", "linux"} {
		if strings.Contains(ua, pc) {
			return Windows
		}
	}
	return Unknown
}

// Detect returns the Device class of the running host.
func Detect() Device {
	switch runtime.GOOS {
	case "android":
		return Android
	case "windows", "darwin", "linux":
		return Windows
	}
	return Unknown
}
