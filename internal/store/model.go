package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/clipbridge/clipbridge/internal/platform"
)

// Clip is one persisted unit of captured text. The JSON tags are the wire
// row shape of the "clips" table.
type Clip struct {
	ID        string          `json:"id,omitempty"`
	UserID    string          `json:"user_id"`
	Text      string          `json:"text"`
	Timestamp time.Time       `json:"timestamp"`
	Device    platform.Device `json:"device"`
	IsSynced  bool            `json:"is_synced"`
}

// Filter narrows queries to one device tag, or to none at all.
type Filter struct {
	device platform.Device
	all    bool
}

// FilterAll applies no device constraint.
var FilterAll = Filter{all: true}

// FilterDevice restricts results to exact device-tag matches.
func FilterDevice(d platform.Device) Filter {
	return Filter{device: d}
}

// ParseFilter converts a flag value to a Filter. "" and "all" mean no
// constraint; anything else must be a valid device tag.
func ParseFilter(s string) (Filter, error) {
	if strings.TrimSpace(s) == "" || strings.EqualFold(strings.TrimSpace(s), "all") {
		return FilterAll, nil
	}
	d, err := platform.ParseDevice(s)
	if err != nil {
		return Filter{}, err
	}
	return FilterDevice(d), nil
}

// All reports whether the filter applies no device constraint.
func (f Filter) All() bool { return f.all }

// Device returns the device tag a non-all filter matches.
func (f Filter) Device() platform.Device { return f.device }

func (f Filter) String() string {
	if f.all {
		return "all"
	}
	return string(f.device)
}

// PersistenceError wraps a store-level failure with the operation that hit it.
// The underlying store message is preserved for display to the user.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
