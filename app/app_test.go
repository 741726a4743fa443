package app_test

import (
	"errors"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"vulkan-sandbox/app"
)

type fakeEvents struct {
	closeAfter int
	polls      int
	calls      *[]string
}

func (f *fakeEvents) ShouldClose() bool {
	return f.polls >= f.closeAfter
}

func (f *fakeEvents) PollEvents() {
	f.polls++
	*f.calls = append(*f.calls, "poll")
}

type fakeBackend struct {
	calls        *[]string
	bootstrapErr error
	drawErr      error
	drawErrAt    int
	draws        int
}

func (f *fakeBackend) Bootstrap() error {
	*f.calls = append(*f.calls, "bootstrap")
	return f.bootstrapErr
}

func (f *fakeBackend) Teardown() {
	*f.calls = append(*f.calls, "teardown")
}

func (f *fakeBackend) DrawFrame() error {
	f.draws++
	*f.calls = append(*f.calls, "draw")
	if f.drawErr != nil && f.draws == f.drawErrAt {
		return f.drawErr
	}
	return nil
}

func (f *fakeBackend) WaitIdle() error {
	*f.calls = append(*f.calls, "wait")
	return nil
}

func (f *fakeBackend) NotifyResized() {}

var _ = Describe("Config", func() {
	It("defaults to the classic window", func() {
		cfg := app.DefaultConfig()
		Expect(cfg.Width).To(Equal(1280))
		Expect(cfg.Height).To(Equal(1024))
		Expect(cfg.Title).To(Equal("Vulkan App"))
		Expect(cfg.FramesInFlight).To(Equal(2))
		Expect(cfg.Debug).To(BeFalse())
		Expect(cfg.VertexShader).To(Equal("vert.spv"))
		Expect(cfg.FragmentShader).To(Equal("frag.spv"))
	})

	It("carries the debug and pacing settings to the renderer", func() {
		cfg := app.DefaultConfig()
		cfg.Debug = true
		cfg.FramesInFlight = 3
		cfg.Throttle = 20 * time.Millisecond

		rc := cfg.RenderConfig()
		Expect(rc.EnableValidation).To(BeTrue())
		Expect(rc.FramesInFlight).To(Equal(3))
		Expect(rc.Throttle).To(Equal(20 * time.Millisecond))
		Expect(rc.AppName).To(Equal("Vulkan App"))
		Expect(rc.ValidationLayers).NotTo(BeEmpty())
	})
})

var _ = Describe("main loop", func() {
	var (
		calls   []string
		events  *fakeEvents
		backend *fakeBackend
		a       *app.App
	)

	BeforeEach(func() {
		calls = nil
		events = &fakeEvents{closeAfter: 3, calls: &calls}
		backend = &fakeBackend{calls: &calls}

		cfg := app.DefaultConfig()
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		a = app.New(cfg)
	})

	It("polls before every draw and waits for the device before teardown", func() {
		Expect(a.RunLoop(events, backend)).To(Succeed())
		Expect(calls).To(Equal([]string{
			"bootstrap",
			"poll", "draw",
			"poll", "draw",
			"poll", "draw",
			"wait",
			"teardown",
		}))
	})

	It("never draws when the window is already closing", func() {
		events.closeAfter = 0
		Expect(a.RunLoop(events, backend)).To(Succeed())
		Expect(calls).To(Equal([]string{"bootstrap", "wait", "teardown"}))
	})

	It("stops at the first failing frame and still tears down", func() {
		drawErr := errors.New("device lost")
		backend.drawErr = drawErr
		backend.drawErrAt = 2

		err := a.RunLoop(events, backend)
		Expect(err).To(MatchError(drawErr))
		Expect(backend.draws).To(Equal(2))
		Expect(calls[len(calls)-1]).To(Equal("teardown"))
	})

	It("does not tear down a backend that failed to bootstrap", func() {
		backend.bootstrapErr = errors.New("no GPU")

		err := a.RunLoop(events, backend)
		Expect(err).To(MatchError(backend.bootstrapErr))
		Expect(calls).To(Equal([]string{"bootstrap"}))
	})
})
