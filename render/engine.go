// Package render owns every Vulkan object of the program. It stands them up
// in dependency order, tears them down in exactly the reverse order and
// implements the GPU side of the per-frame protocol.
package render

import (
	"log/slog"
	"time"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	vk "github.com/vulkan-go/vulkan"

	"vulkan-sandbox/assets"
	"vulkan-sandbox/frame"
	"vulkan-sandbox/queues"
)

// Engine renders a single textured model to a window.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	window Window
	bundle *assets.Bundle

	initialized bool

	instance vk.Instance
	debug    vk.DebugReportCallback
	surface  vk.Surface

	// physicalDevice is the physical device selected for this program.
	physicalDevice vk.PhysicalDevice
	maxAnisotropy  float32
	families       queues.FamilyIndices

	// device is the logical device created for interfacing with the physical device.
	device vk.Device

	graphicsQueue vk.Queue
	presentQueue  vk.Queue

	commandPool vk.CommandPool

	descriptorSetLayout vk.DescriptorSetLayout

	swapChain            vk.Swapchain
	swapChainImages      []vk.Image
	swapChainImageViews  []vk.ImageView
	swapChainImageFormat vk.Format
	swapChainExtent      vk.Extent2D

	renderPass     vk.RenderPass
	pipelineLayout vk.PipelineLayout
	pipeline       vk.Pipeline

	depthFormat       vk.Format
	depthImages       []vk.Image
	depthImagesMemory []vk.DeviceMemory
	depthImageViews   []vk.ImageView

	swapChainFramebuffers []vk.Framebuffer

	textureImage       vk.Image
	textureImageMemory vk.DeviceMemory
	textureImageView   vk.ImageView
	textureSampler     vk.Sampler

	vertexBuffer       vk.Buffer
	vertexBufferMemory vk.DeviceMemory
	indexBuffer        vk.Buffer
	indexBufferMemory  vk.DeviceMemory
	indexCount         uint32

	uniformBuffers       []vk.Buffer
	uniformBuffersMemory []vk.DeviceMemory
	uniformBuffersMapped []unsafe.Pointer

	descriptorPool vk.DescriptorPool
	descriptorSets []vk.DescriptorSet

	commandBuffers []vk.CommandBuffer

	imageAvailableSems []vk.Semaphore
	renderFinishedSems []vk.Semaphore
	inFlightFences     []vk.Fence
	imagesInFlight     []vk.Fence

	scheduler *frame.Scheduler
	startTime time.Duration
}

var _ frame.Target = (*Engine)(nil)

// New returns an Engine which draws bundle to window. No Vulkan object is
// created before Bootstrap.
func New(window Window, bundle *assets.Bundle, cfg Config) (*Engine, error) {
	if window == nil {
		return nil, errors.New("window is nil")
	}
	if bundle == nil || bundle.Texture == nil {
		return nil, errors.New("asset bundle is incomplete")
	}
	if len(bundle.Geometry.Indices) == 0 {
		return nil, errors.New("asset bundle has no geometry")
	}
	if cfg.FramesInFlight < 1 {
		return nil, errors.Newf("frames in flight must be positive, got %d",
			cfg.FramesInFlight)
	}

	return &Engine{
		cfg:    cfg,
		logger: cfg.logger(),
		window: window,
		bundle: bundle,

		instance:       vk.Instance(vk.NullHandle),
		debug:          vk.NullDebugReportCallback,
		surface:        vk.NullSurface,
		physicalDevice: vk.PhysicalDevice(vk.NullHandle),
		device:         vk.Device(vk.NullHandle),

		commandPool:         vk.NullCommandPool,
		descriptorSetLayout: vk.NullDescriptorSetLayout,
		swapChain:           vk.NullSwapchain,
		renderPass:          vk.NullRenderPass,
		pipelineLayout:      vk.NullPipelineLayout,
		pipeline:            vk.NullPipeline,

		textureImage:       vk.NullImage,
		textureImageMemory: vk.NullDeviceMemory,
		textureImageView:   vk.NullImageView,
		textureSampler:     vk.NullSampler,

		vertexBuffer:       vk.NullBuffer,
		vertexBufferMemory: vk.NullDeviceMemory,
		indexBuffer:        vk.NullBuffer,
		indexBufferMemory:  vk.NullDeviceMemory,

		descriptorPool: vk.NullDescriptorPool,
	}, nil
}

// Bootstrap creates every Vulkan object. On failure whatever was created is
// destroyed again. Calling it on a bootstrapped engine does nothing.
func (e *Engine) Bootstrap() error {
	if e.initialized {
		return nil
	}

	if err := e.initVulkan(); err != nil {
		e.cleanupVulkan()
		return err
	}

	scheduler, err := frame.NewScheduler(e, e.cfg.FramesInFlight,
		frame.WithThrottle(e.cfg.Throttle),
		frame.WithLogger(e.logger),
	)
	if err != nil {
		e.cleanupVulkan()
		return errors.Wrap(err, "creating frame scheduler")
	}
	e.scheduler = scheduler
	e.startTime = hrtime.Now()
	e.initialized = true

	e.logger.Debug("render engine bootstrapped",
		"images", len(e.swapChainImages),
		"extent", extentString(e.swapChainExtent),
		"framesInFlight", e.cfg.FramesInFlight,
	)
	return nil
}

func (e *Engine) initVulkan() error {
	if err := e.createInstance(); err != nil {
		return errors.Wrap(err, "createInstance")
	}

	if err := e.setupDebugCallback(); err != nil {
		return errors.Wrap(err, "setupDebugCallback")
	}

	if err := e.createSurface(); err != nil {
		return errors.Wrap(err, "createSurface")
	}

	if err := e.pickPhysicalDevice(); err != nil {
		return errors.Wrap(err, "pickPhysicalDevice")
	}

	if err := e.createLogicalDevice(); err != nil {
		return errors.Wrap(err, "createLogicalDevice")
	}

	if err := e.createCommandPool(); err != nil {
		return errors.Wrap(err, "createCommandPool")
	}

	if err := e.createDescriptorSetLayout(); err != nil {
		return errors.Wrap(err, "createDescriptorSetLayout")
	}

	if err := e.createSwapChainResources(); err != nil {
		return err
	}

	if err := e.createTextureImage(); err != nil {
		return errors.Wrap(err, "createTextureImage")
	}

	if err := e.createTextureImageView(); err != nil {
		return errors.Wrap(err, "createTextureImageView")
	}

	if err := e.createTextureSampler(); err != nil {
		return errors.Wrap(err, "createTextureSampler")
	}

	if err := e.createVertexBuffer(); err != nil {
		return errors.Wrap(err, "createVertexBuffer")
	}

	if err := e.createIndexBuffer(); err != nil {
		return errors.Wrap(err, "createIndexBuffer")
	}

	if err := e.createPerImageResources(); err != nil {
		return err
	}

	if err := e.createCommandBuffers(); err != nil {
		return errors.Wrap(err, "createCommandBuffers")
	}

	if err := e.createSyncObjects(); err != nil {
		return errors.Wrap(err, "createSyncObjects")
	}

	return nil
}

// Teardown waits for the device to go idle and destroys every Vulkan object
// in the reverse order of creation. It must run before the window is
// destroyed. Calling it again does nothing.
func (e *Engine) Teardown() {
	if !e.initialized {
		return
	}

	if err := e.WaitIdle(); err != nil {
		e.logger.Warn("waiting for device idle before teardown", "err", err)
	}

	e.cleanupVulkan()
	e.scheduler = nil
	e.initialized = false
}

func (e *Engine) cleanupVulkan() {
	e.cleanupSyncObjects()
	e.cleanupCommandBuffers()
	e.cleanupPerImageResources()
	e.cleanupGeometry()
	e.cleanupTexture()
	e.cleanupSwapChain()

	if e.descriptorSetLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(e.device, e.descriptorSetLayout, nil)
		e.descriptorSetLayout = vk.NullDescriptorSetLayout
	}

	if e.commandPool != vk.NullCommandPool {
		vk.DestroyCommandPool(e.device, e.commandPool, nil)
		e.commandPool = vk.NullCommandPool
	}

	if e.device != vk.Device(vk.NullHandle) {
		vk.DestroyDevice(e.device, nil)
		e.device = vk.Device(vk.NullHandle)
	}
	e.physicalDevice = vk.PhysicalDevice(vk.NullHandle)

	if e.surface != vk.NullSurface {
		vk.DestroySurface(e.instance, e.surface, nil)
		e.surface = vk.NullSurface
	}

	if e.debug != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(e.instance, e.debug, nil)
		e.debug = vk.NullDebugReportCallback
	}

	if e.instance != vk.Instance(vk.NullHandle) {
		vk.DestroyInstance(e.instance, nil)
		e.instance = vk.Instance(vk.NullHandle)
	}
}

// DrawFrame renders and presents one frame.
func (e *Engine) DrawFrame() error {
	if !e.initialized {
		return ErrNotBootstrapped
	}
	return e.scheduler.DrawFrame()
}

// NotifyResized makes the next frame rebuild the swap chain. It is safe to
// call from the window system callbacks.
func (e *Engine) NotifyResized() {
	if e.scheduler != nil {
		e.scheduler.NotifyResized()
	}
}

// WaitIdle blocks until the device finished all submitted work.
func (e *Engine) WaitIdle() error {
	if e.device == vk.Device(vk.NullHandle) {
		return nil
	}
	return check(vk.DeviceWaitIdle(e.device), "wait for device idle")
}
