package frame_test

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"vulkan-sandbox/frame"
)

// fakeTarget imitates a swap chain of images presentable images.
type fakeTarget struct {
	images uint32
	next   uint32

	acquireStatus []frame.Status
	presentStatus []frame.Status

	submitErr error

	calls      []string
	recreated  int
	signaled   map[int]bool
	slotStates []frame.State
	waitStates []frame.State
	scheduler  *frame.Scheduler
}

func newFakeTarget(images uint32) *fakeTarget {
	return &fakeTarget{
		images:   images,
		signaled: map[int]bool{},
	}
}

func (f *fakeTarget) WaitFence(slot int) error {
	f.calls = append(f.calls, fmt.Sprintf("wait %d", slot))
	if f.scheduler != nil {
		f.waitStates = append(f.waitStates, f.scheduler.State(slot))
	}
	return nil
}

func (f *fakeTarget) ResetFence(slot int) error {
	f.calls = append(f.calls, fmt.Sprintf("reset %d", slot))
	f.signaled[slot] = false
	return nil
}

func (f *fakeTarget) AcquireImage(slot int) (uint32, frame.Status, error) {
	f.calls = append(f.calls, fmt.Sprintf("acquire %d", slot))

	status := frame.StatusSuccess
	if len(f.acquireStatus) > 0 {
		status = f.acquireStatus[0]
		f.acquireStatus = f.acquireStatus[1:]
	}

	image := f.next
	f.next = (f.next + 1) % f.images
	return image, status, nil
}

func (f *fakeTarget) UpdateUniforms(image uint32) error {
	f.calls = append(f.calls, fmt.Sprintf("uniforms %d", image))
	return nil
}

func (f *fakeTarget) Submit(slot int, image uint32) error {
	f.calls = append(f.calls, fmt.Sprintf("submit %d %d", slot, image))
	if f.submitErr != nil {
		return f.submitErr
	}
	f.signaled[slot] = true
	return nil
}

func (f *fakeTarget) Present(slot int, image uint32) (frame.Status, error) {
	f.calls = append(f.calls, fmt.Sprintf("present %d %d", slot, image))
	if f.scheduler != nil {
		f.slotStates = append(f.slotStates, f.scheduler.State(slot))
	}

	status := frame.StatusSuccess
	if len(f.presentStatus) > 0 {
		status = f.presentStatus[0]
		f.presentStatus = f.presentStatus[1:]
	}
	return status, nil
}

func (f *fakeTarget) Recreate() error {
	f.calls = append(f.calls, "recreate")
	f.recreated++
	f.next = 0
	return nil
}

var _ = Describe("Scheduler", func() {
	var target *fakeTarget

	BeforeEach(func() {
		target = newFakeTarget(3)
	})

	newScheduler := func(ring int, opts ...frame.Option) *frame.Scheduler {
		s, err := frame.NewScheduler(target, ring, opts...)
		Expect(err).NotTo(HaveOccurred())
		target.scheduler = s
		return s
	}

	It("rejects an empty ring", func() {
		_, err := frame.NewScheduler(target, 0)
		Expect(err).To(HaveOccurred())
	})

	It("runs the per-frame protocol in order", func() {
		s := newScheduler(2)
		Expect(s.DrawFrame()).To(Succeed())

		Expect(target.calls).To(Equal([]string{
			"wait 0",
			"acquire 0",
			"reset 0",
			"uniforms 0",
			"submit 0 0",
			"present 0 0",
		}))
		Expect(target.slotStates).To(Equal([]frame.State{frame.StatePresenting}))
		Expect(s.State(0)).To(Equal(frame.StateSubmitted))
		Expect(s.State(1)).To(Equal(frame.StateIdle))
	})

	It("keeps a slot submitted until its fence is waited on again", func() {
		s := newScheduler(2)
		for i := 0; i < 3; i++ {
			Expect(s.DrawFrame()).To(Succeed())
		}

		Expect(target.waitStates).To(Equal([]frame.State{
			frame.StateIdle,
			frame.StateIdle,
			frame.StateSubmitted,
		}))
		Expect(s.State(0)).To(Equal(frame.StateSubmitted))
		Expect(s.State(1)).To(Equal(frame.StateSubmitted))
	})

	table.DescribeTable("cycles slots",
		func(ring, frames int) {
			s := newScheduler(ring)
			for i := 0; i < frames; i++ {
				Expect(s.DrawFrame()).To(Succeed())
			}
			Expect(s.Current()).To(Equal(frames % ring))
			Expect(s.Frames()).To(BeEquivalentTo(frames))
			Expect(target.recreated).To(BeZero())
		},
		table.Entry("single slot", 1, 5),
		table.Entry("two slots", 2, 7),
		table.Entry("three slots", 3, 10),
		table.Entry("no frames", 2, 0),
	)

	It("indexes per-image work by image and fences by slot", func() {
		s := newScheduler(2)
		for i := 0; i < 3; i++ {
			Expect(s.DrawFrame()).To(Succeed())
		}
		Expect(target.calls).To(ContainElement("submit 0 2"))
		Expect(target.calls).To(ContainElement("uniforms 2"))
	})

	It("recreates after an out of date present without advancing", func() {
		s := newScheduler(2)
		target.presentStatus = []frame.Status{frame.StatusOutOfDate}

		Expect(s.DrawFrame()).To(Succeed())
		Expect(target.recreated).To(Equal(1))
		Expect(s.Current()).To(Equal(0))

		Expect(s.DrawFrame()).To(Succeed())
		Expect(s.Current()).To(Equal(1))
		Expect(target.calls[len(target.calls)-1]).To(Equal("present 0 0"))
	})

	It("recreates after a suboptimal present", func() {
		s := newScheduler(2)
		target.presentStatus = []frame.Status{frame.StatusSuboptimal}

		Expect(s.DrawFrame()).To(Succeed())
		Expect(target.recreated).To(Equal(1))
		Expect(s.Current()).To(Equal(0))
	})

	It("recreates right away when acquire is out of date", func() {
		s := newScheduler(2)
		target.acquireStatus = []frame.Status{frame.StatusOutOfDate}

		Expect(s.DrawFrame()).To(Succeed())
		Expect(target.calls).To(Equal([]string{"wait 0", "acquire 0", "recreate"}))
		Expect(s.Current()).To(Equal(0))
	})

	It("presents a suboptimal acquire before recreating", func() {
		s := newScheduler(2)
		target.acquireStatus = []frame.Status{frame.StatusSuboptimal}

		Expect(s.DrawFrame()).To(Succeed())
		Expect(target.calls).To(Equal([]string{
			"wait 0",
			"acquire 0",
			"reset 0",
			"uniforms 0",
			"submit 0 0",
			"present 0 0",
			"recreate",
		}))
		Expect(s.Current()).To(Equal(0))
	})

	It("recreates once per resize notification", func() {
		s := newScheduler(2)
		s.NotifyResized()
		s.NotifyResized()

		Expect(s.DrawFrame()).To(Succeed())
		Expect(target.recreated).To(Equal(1))
		Expect(s.Current()).To(Equal(0))

		Expect(s.DrawFrame()).To(Succeed())
		Expect(target.recreated).To(Equal(1))
		Expect(s.Current()).To(Equal(1))
	})

	It("treats submit failures as fatal", func() {
		s := newScheduler(2)
		boom := errors.New("device lost")
		target.submitErr = boom

		err := s.DrawFrame()
		Expect(err).To(MatchError(boom))
		Expect(target.recreated).To(BeZero())
		Expect(s.State(0)).To(Equal(frame.StateIdle))
	})

	It("drops frames inside the throttle interval", func() {
		now := time.Duration(0)
		s := newScheduler(2,
			frame.WithThrottle(time.Second/60),
			frame.WithClock(func() time.Duration { return now }),
		)

		Expect(s.DrawFrame()).To(Succeed())
		now += time.Millisecond
		Expect(s.DrawFrame()).To(Succeed())
		Expect(s.Frames()).To(BeEquivalentTo(1))

		now += 20 * time.Millisecond
		Expect(s.DrawFrame()).To(Succeed())
		Expect(s.Frames()).To(BeEquivalentTo(2))
	})
})

var _ = Describe("Status", func() {
	table.DescribeTable("Stale",
		func(s frame.Status, stale bool) {
			Expect(s.Stale()).To(Equal(stale))
		},
		table.Entry("success", frame.StatusSuccess, false),
		table.Entry("suboptimal", frame.StatusSuboptimal, true),
		table.Entry("out of date", frame.StatusOutOfDate, true),
	)
})
