package render

import (
	"math"

	"github.com/loov/hrtime"
	vk "github.com/vulkan-go/vulkan"

	"vulkan-sandbox/frame"
	"vulkan-sandbox/unsafer"
)

// WaitFence blocks until the GPU is done with the work last submitted from
// slot.
func (e *Engine) WaitFence(slot int) error {
	fences := []vk.Fence{e.inFlightFences[slot]}
	res := vk.WaitForFences(e.device, 1, fences, vk.True, math.MaxUint64)
	return check(res, "wait for in flight fence")
}

// ResetFence unsignals the fence of slot. It is called only once work is
// certain to be submitted, otherwise the next wait would block forever.
func (e *Engine) ResetFence(slot int) error {
	fences := []vk.Fence{e.inFlightFences[slot]}
	return check(vk.ResetFences(e.device, 1, fences), "reset in flight fence")
}

// AcquireImage gets the index of the next presentable image. It also waits
// for any earlier frame which still renders to the same image.
func (e *Engine) AcquireImage(slot int) (uint32, frame.Status, error) {
	var imageIndex uint32
	res := vk.AcquireNextImage(
		e.device,
		e.swapChain,
		math.MaxUint64,
		e.imageAvailableSems[slot],
		vk.NullFence,
		&imageIndex,
	)

	status, err := presentationStatus(res, "acquire swap chain image")
	if err != nil || status == frame.StatusOutOfDate {
		return 0, status, err
	}

	if fence := e.imagesInFlight[imageIndex]; fence != vk.NullFence {
		res := vk.WaitForFences(e.device, 1, []vk.Fence{fence}, vk.True, math.MaxUint64)
		if err := check(res, "wait for image in flight"); err != nil {
			return 0, status, err
		}
	}
	e.imagesInFlight[imageIndex] = e.inFlightFences[slot]

	return imageIndex, status, nil
}

// UpdateUniforms writes the transformation matrices for the current moment
// into the uniform buffer of image.
func (e *Engine) UpdateUniforms(image uint32) error {
	elapsed := hrtime.Since(e.startTime)
	ubo := ComputeUniforms(elapsed, e.swapChainExtent.Width, e.swapChainExtent.Height)

	vk.Memcopy(e.uniformBuffersMapped[image], unsafer.StructToBytes(&ubo))
	return nil
}

// Submit queues the command buffer recorded for image.
func (e *Engine) Submit(slot int, image uint32) error {
	signalSemaphores := []vk.Semaphore{
		e.renderFinishedSems[slot],
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{e.imageAvailableSems[slot]},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{e.commandBuffers[image]},
		PSignalSemaphores:    signalSemaphores,
		SignalSemaphoreCount: uint32(len(signalSemaphores)),
	}

	res := vk.QueueSubmit(
		e.graphicsQueue,
		1,
		[]vk.SubmitInfo{submitInfo},
		e.inFlightFences[slot],
	)
	return check(res, "submit draw command buffer")
}

// Present queues image for presentation once rendering finished.
func (e *Engine) Present(slot int, image uint32) (frame.Status, error) {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{e.renderFinishedSems[slot]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{e.swapChain},
		PImageIndices:      []uint32{image},
	}

	res := vk.QueuePresent(e.presentQueue, &presentInfo)
	return presentationStatus(res, "present swap chain image")
}

// presentationStatus separates the results the swap chain recovers from by
// being recreated from actual failures.
func presentationStatus(res vk.Result, op string) (frame.Status, error) {
	switch res {
	case vk.Success:
		return frame.StatusSuccess, nil
	case vk.Suboptimal:
		return frame.StatusSuboptimal, nil
	case vk.ErrorOutOfDate:
		return frame.StatusOutOfDate, nil
	default:
		return frame.StatusSuccess, check(res, op)
	}
}
