package frame

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
)

// Target is the GPU side of the per-frame protocol. Slots index the frame in
// flight ring while images index the swap chain, and the two must not be
// mixed up.
type Target interface {
	// WaitFence blocks until the work last submitted from slot is done.
	WaitFence(slot int) error

	// ResetFence unsignals the fence of slot before it is submitted again.
	ResetFence(slot int) error

	// AcquireImage gets the next presentable image. It signals the image
	// available semaphore of slot.
	AcquireImage(slot int) (uint32, Status, error)

	// UpdateUniforms writes the uniform buffer owned by image.
	UpdateUniforms(image uint32) error

	// Submit queues the command buffer recorded for image, waiting on the
	// image available semaphore and signaling the render finished semaphore
	// and the fence of slot.
	Submit(slot int, image uint32) error

	// Present queues image for presentation once rendering to it finished.
	Present(slot int, image uint32) (Status, error)

	// Recreate rebuilds the swap chain and everything depending on it.
	Recreate() error
}

// Scheduler runs frames on a Target. It is driven from a single goroutine,
// except for NotifyResized which may be called from anywhere.
type Scheduler struct {
	target Target
	logger *slog.Logger

	states  []State
	current int

	resized atomic.Bool

	clock    func() time.Duration
	throttle time.Duration
	accepted time.Duration
	drawn    bool

	frames uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithThrottle drops frames which come less than d after the last drawn one.
// Zero disables throttling.
func WithThrottle(d time.Duration) Option {
	return func(s *Scheduler) {
		s.throttle = d
	}
}

// WithClock replaces the monotonic clock used for throttling.
func WithClock(clock func() time.Duration) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// WithLogger sets the logger. slog.Default() is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler returns a Scheduler with ring frames in flight.
func NewScheduler(target Target, ring int, opts ...Option) (*Scheduler, error) {
	if target == nil {
		return nil, errors.New("frame target is nil")
	}
	if ring < 1 {
		return nil, errors.Newf("frames in flight must be positive, got %d", ring)
	}

	s := &Scheduler{
		target: target,
		states: make([]State, ring),
		clock:  hrtime.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

// NotifyResized makes the next frame recreate the swap chain after presenting.
func (s *Scheduler) NotifyResized() {
	s.resized.Store(true)
}

// Current returns the index of the slot the next frame will use.
func (s *Scheduler) Current() int {
	return s.current
}

// State returns the protocol state of slot.
func (s *Scheduler) State(slot int) State {
	return s.states[slot]
}

// Frames returns how many frames were presented without triggering a
// recreation.
func (s *Scheduler) Frames() uint64 {
	return s.frames
}

// DrawFrame runs one iteration of the per-frame protocol. Only errors which
// cannot be resolved by recreating the swap chain are returned.
func (s *Scheduler) DrawFrame() error {
	if s.throttled() {
		return nil
	}

	slot := s.current

	// The slot stays StateSubmitted until its fence says the GPU is done.
	if err := s.target.WaitFence(slot); err != nil {
		s.states[slot] = StateIdle
		return errors.Wrapf(err, "waiting for frame %d", slot)
	}
	s.states[slot] = StateAcquiring

	image, acquired, err := s.target.AcquireImage(slot)
	if err != nil {
		s.states[slot] = StateIdle
		return errors.Wrap(err, "acquiring swap chain image")
	}

	// Nothing will signal the semaphore and no image can be drawn to. The
	// fence stays signaled so the next wait does not block forever.
	if acquired == StatusOutOfDate {
		s.states[slot] = StateIdle
		return s.recreate("acquire", acquired)
	}

	if err := s.target.ResetFence(slot); err != nil {
		s.states[slot] = StateIdle
		return errors.Wrapf(err, "resetting fence of frame %d", slot)
	}

	if err := s.target.UpdateUniforms(image); err != nil {
		s.states[slot] = StateIdle
		return errors.Wrapf(err, "updating uniforms of image %d", image)
	}

	if err := s.target.Submit(slot, image); err != nil {
		s.states[slot] = StateIdle
		return errors.Wrapf(err, "submitting image %d", image)
	}

	s.states[slot] = StatePresenting
	presented, err := s.target.Present(slot, image)
	if err != nil {
		s.states[slot] = StateIdle
		return errors.Wrapf(err, "presenting image %d", image)
	}
	s.states[slot] = StateSubmitted

	resized := s.resized.Swap(false)
	switch {
	case acquired.Stale():
		return s.recreate("acquire", acquired)
	case presented.Stale():
		return s.recreate("present", presented)
	case resized:
		return s.recreate("resize", StatusSuccess)
	}

	s.frames++
	s.current = (s.current + 1) % len(s.states)
	return nil
}

func (s *Scheduler) recreate(reason string, status Status) error {
	s.resized.Store(false)
	s.logger.Debug("recreating swap chain", "reason", reason, "status", status)

	if err := s.target.Recreate(); err != nil {
		return errors.Wrap(err, "recreating swap chain")
	}
	return nil
}

func (s *Scheduler) throttled() bool {
	if s.throttle <= 0 {
		return false
	}

	now := s.clock()
	if s.drawn && now-s.accepted < s.throttle {
		return true
	}

	s.accepted = now
	s.drawn = true
	return false
}
