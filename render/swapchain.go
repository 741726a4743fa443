package render

import (
	"fmt"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"vulkan-sandbox/swapchain"
)

// createSwapChainResources creates everything which depends on the swap chain
// extent or its image count. cleanupSwapChain is its mirror.
func (e *Engine) createSwapChainResources() error {
	if err := e.createSwapChain(); err != nil {
		return errors.Wrap(err, "createSwapChain")
	}

	if err := e.createImageViews(); err != nil {
		return errors.Wrap(err, "createImageViews")
	}

	if err := e.createRenderPass(); err != nil {
		return errors.Wrap(err, "createRenderPass")
	}

	if err := e.createGraphicsPipeline(); err != nil {
		return errors.Wrap(err, "createGraphicsPipeline")
	}

	if err := e.createDepthResources(); err != nil {
		return errors.Wrap(err, "createDepthResources")
	}

	if err := e.createFramebuffers(); err != nil {
		return errors.Wrap(err, "createFramebuffers")
	}

	return nil
}

func (e *Engine) cleanupSwapChain() {
	for _, frameBuffer := range e.swapChainFramebuffers {
		vk.DestroyFramebuffer(e.device, frameBuffer, nil)
	}
	e.swapChainFramebuffers = nil

	e.cleanupDepthResources()

	if e.pipeline != vk.NullPipeline {
		vk.DestroyPipeline(e.device, e.pipeline, nil)
		e.pipeline = vk.NullPipeline
	}

	if e.pipelineLayout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(e.device, e.pipelineLayout, nil)
		e.pipelineLayout = vk.NullPipelineLayout
	}

	if e.renderPass != vk.NullRenderPass {
		vk.DestroyRenderPass(e.device, e.renderPass, nil)
		e.renderPass = vk.NullRenderPass
	}

	for _, imageView := range e.swapChainImageViews {
		vk.DestroyImageView(e.device, imageView, nil)
	}
	e.swapChainImageViews = nil

	if e.swapChain != vk.NullSwapchain {
		vk.DestroySwapchain(e.device, e.swapChain, nil)
		e.swapChain = vk.NullSwapchain
	}
	e.swapChainImages = nil
}

func (e *Engine) createSwapChain() error {
	support, err := swapchain.QuerySupport(e.physicalDevice, e.surface)
	if err != nil {
		return err
	}

	surfaceFormat, err := swapchain.ChooseSurfaceFormat(support.Formats)
	if err != nil {
		return err
	}
	presentMode := swapchain.ChoosePresentMode(support.PresentModes)

	width, height := e.window.FramebufferSize()
	extent := swapchain.ChooseExtent(support.Capabilities, width, height)
	imageCount := swapchain.ImageCount(support.Capabilities)

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          e.surface,
		MinImageCount:    imageCount,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageFormat:      surfaceFormat.Format,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	if families := e.families.Unique(); len(families) > 1 {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = uint32(len(families))
		createInfo.PQueueFamilyIndices = families
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var swapChain vk.Swapchain
	res := vk.CreateSwapchain(e.device, &createInfo, nil, &swapChain)
	if err := check(res, "create swap chain"); err != nil {
		return err
	}
	e.swapChain = swapChain

	var imagesCount uint32
	res = vk.GetSwapchainImages(e.device, e.swapChain, &imagesCount, nil)
	if err := check(res, "get swap chain images count"); err != nil {
		return err
	}

	images := make([]vk.Image, imagesCount)
	res = vk.GetSwapchainImages(e.device, e.swapChain, &imagesCount, images)
	if err := check(res, "get swap chain images"); err != nil {
		return err
	}

	e.swapChainImages = images[:imagesCount]
	e.swapChainImageFormat = surfaceFormat.Format
	e.swapChainExtent = extent

	e.logger.Debug("swap chain created",
		"images", imagesCount,
		"extent", extentString(extent),
		"format", surfaceFormat.Format,
		"presentMode", presentMode,
	)
	return nil
}

func (e *Engine) createImageViews() error {
	for i, swapChainImage := range e.swapChainImages {
		imageView, err := e.createImageView(
			swapChainImage,
			e.swapChainImageFormat,
			vk.ImageAspectFlags(vk.ImageAspectColorBit),
		)
		if err != nil {
			return errors.Wrapf(err, "failed to create image view %d", i)
		}

		e.swapChainImageViews = append(e.swapChainImageViews, imageView)
	}

	return nil
}

// Recreate rebuilds the swap chain and everything depending on it. While the
// window is minimized it blocks on window events.
func (e *Engine) Recreate() error {
	for {
		width, height := e.window.FramebufferSize()
		if width > 0 && height > 0 {
			break
		}

		e.window.WaitEvents()
	}

	if err := e.WaitIdle(); err != nil {
		return err
	}

	previousImages := len(e.swapChainImages)

	e.cleanupCommandBuffers()
	e.cleanupSwapChain()

	if err := e.createSwapChainResources(); err != nil {
		return err
	}

	// Per-image resources must stay in step with the swap chain images.
	if len(e.swapChainImages) != previousImages {
		e.logger.Debug("swap chain image count changed",
			"from", previousImages,
			"to", len(e.swapChainImages),
		)

		e.cleanupPerImageResources()
		if err := e.createPerImageResources(); err != nil {
			return err
		}
	}

	if err := e.createCommandBuffers(); err != nil {
		return errors.Wrap(err, "createCommandBuffers")
	}

	e.imagesInFlight = make([]vk.Fence, len(e.swapChainImages))
	return nil
}

func extentString(extent vk.Extent2D) string {
	return fmt.Sprintf("%dx%d", extent.Width, extent.Height)
}
