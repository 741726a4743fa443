package render

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

func (e *Engine) createSyncObjects() error {
	semaphoreInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	// Fences start signaled so the first wait of every slot returns at once.
	fenceInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}

	for i := 0; i < e.cfg.FramesInFlight; i++ {
		var imageAvailableSem vk.Semaphore
		res := vk.CreateSemaphore(e.device, &semaphoreInfo, nil, &imageAvailableSem)
		if err := vk.Error(res); err != nil {
			return errors.Wrapf(err, "failed to create image available semaphore %d", i)
		}
		e.imageAvailableSems = append(e.imageAvailableSems, imageAvailableSem)

		var renderFinishedSem vk.Semaphore
		res = vk.CreateSemaphore(e.device, &semaphoreInfo, nil, &renderFinishedSem)
		if err := vk.Error(res); err != nil {
			return errors.Wrapf(err, "failed to create render finished semaphore %d", i)
		}
		e.renderFinishedSems = append(e.renderFinishedSems, renderFinishedSem)

		var fence vk.Fence
		res = vk.CreateFence(e.device, &fenceInfo, nil, &fence)
		if err := vk.Error(res); err != nil {
			return errors.Wrapf(err, "failed to create in flight fence %d", i)
		}
		e.inFlightFences = append(e.inFlightFences, fence)
	}

	e.imagesInFlight = make([]vk.Fence, len(e.swapChainImages))

	return nil
}

func (e *Engine) cleanupSyncObjects() {
	for _, fence := range e.inFlightFences {
		vk.DestroyFence(e.device, fence, nil)
	}
	for _, sem := range e.renderFinishedSems {
		vk.DestroySemaphore(e.device, sem, nil)
	}
	for _, sem := range e.imageAvailableSems {
		vk.DestroySemaphore(e.device, sem, nil)
	}

	e.inFlightFences = nil
	e.renderFinishedSems = nil
	e.imageAvailableSems = nil
	e.imagesInFlight = nil
}
