// Package frame drives the per-frame protocol over a ring of frames in
// flight: wait for the slot fence, acquire an image, submit the recorded work,
// present it and recreate the swap chain when presentation goes stale.
package frame

import "fmt"

// Status is the recoverable part of an acquire or present result. Anything
// else is reported as an error and is fatal.
type Status int

const (
	StatusSuccess Status = iota

	// StatusSuboptimal means the image was presented but the swap chain no
	// longer matches the surface exactly.
	StatusSuboptimal

	// StatusOutOfDate means the swap chain can no longer be used.
	StatusOutOfDate
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSuboptimal:
		return "suboptimal"
	case StatusOutOfDate:
		return "out of date"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Stale returns true when the swap chain has to be recreated.
func (s Status) Stale() bool {
	return s == StatusSuboptimal || s == StatusOutOfDate
}

// State is where a frame-in-flight slot is in the per-frame protocol.
type State int

const (
	// StateIdle means nothing was submitted from the slot, or it failed.
	StateIdle State = iota
	StateAcquiring
	// StateSubmitted means the slot's work is queued and its fence has not
	// been waited on yet.
	StateSubmitted
	StatePresenting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateSubmitted:
		return "submitted"
	case StatePresenting:
		return "presenting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
