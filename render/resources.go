package render

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"vulkan-sandbox/unsafer"
)

// textureFormat matches the UNORM color attachment, so texels reach the
// screen without any color space conversion.
const textureFormat = vk.FormatR8g8b8a8Unorm

// createDepthResources creates one depth image per swap chain image and
// moves each into the depth attachment layout.
func (e *Engine) createDepthResources() error {
	for i := range e.swapChainImages {
		var (
			depthImage       vk.Image
			depthImageMemory vk.DeviceMemory
		)

		err := e.createImage(
			e.swapChainExtent.Width,
			e.swapChainExtent.Height,
			e.depthFormat,
			vk.ImageTilingOptimal,
			vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
			&depthImage,
			&depthImageMemory,
		)
		if err != nil {
			return errors.Wrapf(err, "could not create depth image %d", i)
		}
		e.depthImages = append(e.depthImages, depthImage)
		e.depthImagesMemory = append(e.depthImagesMemory, depthImageMemory)

		depthImageView, err := e.createImageView(
			depthImage,
			e.depthFormat,
			vk.ImageAspectFlags(vk.ImageAspectDepthBit),
		)
		if err != nil {
			return errors.Wrapf(err, "failed to create depth image view %d", i)
		}
		e.depthImageViews = append(e.depthImageViews, depthImageView)

		err = e.transitionImageLayout(
			depthImage,
			e.depthFormat,
			vk.ImageLayoutUndefined,
			vk.ImageLayoutDepthStencilAttachmentOptimal,
		)
		if err != nil {
			return errors.Wrapf(err, "transitioning depth image %d", i)
		}
	}

	return nil
}

func (e *Engine) cleanupDepthResources() {
	for _, view := range e.depthImageViews {
		vk.DestroyImageView(e.device, view, nil)
	}
	for _, image := range e.depthImages {
		vk.DestroyImage(e.device, image, nil)
	}
	for _, memory := range e.depthImagesMemory {
		vk.FreeMemory(e.device, memory, nil)
	}

	e.depthImageViews = nil
	e.depthImages = nil
	e.depthImagesMemory = nil
}

func (e *Engine) createFramebuffers() error {
	for i, swapChainView := range e.swapChainImageViews {
		attachments := make([]vk.ImageView, attachmentCount)
		attachments[colorAttachment] = swapChainView
		attachments[depthAttachment] = e.depthImageViews[i]

		frameBufferInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      e.renderPass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           e.swapChainExtent.Width,
			Height:          e.swapChainExtent.Height,
			Layers:          1,
		}

		var frameBuffer vk.Framebuffer
		res := vk.CreateFramebuffer(e.device, &frameBufferInfo, nil, &frameBuffer)
		if err := vk.Error(res); err != nil {
			return errors.Wrapf(err, "failed to create frame buffer %d", i)
		}

		e.swapChainFramebuffers = append(e.swapChainFramebuffers, frameBuffer)
	}

	return nil
}

func (e *Engine) createTextureImage() error {
	img := e.bundle.Texture
	texWidth := uint32(img.Rect.Dx())
	texHeight := uint32(img.Rect.Dy())
	imgSize := vk.DeviceSize(len(img.Pix))

	var (
		stagingBuffer       vk.Buffer
		stagingBufferMemory vk.DeviceMemory
	)

	err := e.createBuffer(
		imgSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit),
		&stagingBuffer,
		&stagingBufferMemory,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create texture staging buffer")
	}

	defer func() {
		vk.DestroyBuffer(e.device, stagingBuffer, nil)
		vk.FreeMemory(e.device, stagingBufferMemory, nil)
	}()

	if err := e.fillMemory(stagingBufferMemory, img.Pix); err != nil {
		return err
	}

	err = e.createImage(
		texWidth,
		texHeight,
		textureFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)|
			vk.ImageUsageFlags(vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		&e.textureImage,
		&e.textureImageMemory,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create Vulkan image")
	}

	err = e.transitionImageLayout(
		e.textureImage,
		textureFormat,
		vk.ImageLayoutUndefined,
		vk.ImageLayoutTransferDstOptimal,
	)
	if err != nil {
		return errors.Wrap(err, "transition image layout")
	}

	err = e.copyBufferToImage(stagingBuffer, e.textureImage, texWidth, texHeight)
	if err != nil {
		return errors.Wrap(err, "copying buffer to image")
	}

	err = e.transitionImageLayout(
		e.textureImage,
		textureFormat,
		vk.ImageLayoutTransferDstOptimal,
		vk.ImageLayoutShaderReadOnlyOptimal,
	)
	if err != nil {
		return errors.Wrap(err, "transitioning to read only optimal layout")
	}

	return nil
}

func (e *Engine) createTextureImageView() error {
	textureImageView, err := e.createImageView(
		e.textureImage,
		textureFormat,
		vk.ImageAspectFlags(vk.ImageAspectColorBit),
	)
	if err != nil {
		return err
	}
	e.textureImageView = textureImageView

	return nil
}

func (e *Engine) createTextureSampler() error {
	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           e.maxAnisotropy,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		MipLodBias:              0,
		MinLod:                  0,
		MaxLod:                  0,
	}

	var sampler vk.Sampler
	res := vk.CreateSampler(e.device, &samplerInfo, nil, &sampler)
	if err := check(res, "create sampler"); err != nil {
		return err
	}
	e.textureSampler = sampler

	return nil
}

func (e *Engine) cleanupTexture() {
	if e.textureSampler != vk.NullSampler {
		vk.DestroySampler(e.device, e.textureSampler, nil)
		e.textureSampler = vk.NullSampler
	}

	if e.textureImageView != vk.NullImageView {
		vk.DestroyImageView(e.device, e.textureImageView, nil)
		e.textureImageView = vk.NullImageView
	}

	if e.textureImage != vk.NullImage {
		vk.DestroyImage(e.device, e.textureImage, nil)
		e.textureImage = vk.NullImage
	}

	if e.textureImageMemory != vk.NullDeviceMemory {
		vk.FreeMemory(e.device, e.textureImageMemory, nil)
		e.textureImageMemory = vk.NullDeviceMemory
	}
}

func (e *Engine) createVertexBuffer() error {
	return e.createDeviceLocalBuffer(
		unsafer.SliceToBytes(e.bundle.Geometry.Vertices),
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit),
		&e.vertexBuffer,
		&e.vertexBufferMemory,
	)
}

func (e *Engine) createIndexBuffer() error {
	indices := e.bundle.Geometry.Indices
	err := e.createDeviceLocalBuffer(
		unsafer.SliceToBytes(indices),
		vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit),
		&e.indexBuffer,
		&e.indexBufferMemory,
	)
	if err != nil {
		return err
	}
	e.indexCount = uint32(len(indices))

	return nil
}

func (e *Engine) cleanupGeometry() {
	if e.indexBuffer != vk.NullBuffer {
		vk.DestroyBuffer(e.device, e.indexBuffer, nil)
		e.indexBuffer = vk.NullBuffer
	}
	if e.indexBufferMemory != vk.NullDeviceMemory {
		vk.FreeMemory(e.device, e.indexBufferMemory, nil)
		e.indexBufferMemory = vk.NullDeviceMemory
	}

	if e.vertexBuffer != vk.NullBuffer {
		vk.DestroyBuffer(e.device, e.vertexBuffer, nil)
		e.vertexBuffer = vk.NullBuffer
	}
	if e.vertexBufferMemory != vk.NullDeviceMemory {
		vk.FreeMemory(e.device, e.vertexBufferMemory, nil)
		e.vertexBufferMemory = vk.NullDeviceMemory
	}
}

// createPerImageResources creates the uniform buffer and the descriptor set
// each swap chain image owns.
func (e *Engine) createPerImageResources() error {
	if err := e.createUniformBuffers(); err != nil {
		return errors.Wrap(err, "createUniformBuffers")
	}

	if err := e.createDescriptorPool(); err != nil {
		return errors.Wrap(err, "createDescriptorPool")
	}

	if err := e.createDescriptorSets(); err != nil {
		return errors.Wrap(err, "createDescriptorSets")
	}

	return nil
}

func (e *Engine) cleanupPerImageResources() {
	// Destroying the pool frees the descriptor sets allocated from it.
	if e.descriptorPool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(e.device, e.descriptorPool, nil)
		e.descriptorPool = vk.NullDescriptorPool
	}
	e.descriptorSets = nil

	for i, memory := range e.uniformBuffersMemory {
		if i < len(e.uniformBuffersMapped) {
			vk.UnmapMemory(e.device, memory)
		}
		vk.FreeMemory(e.device, memory, nil)
	}
	for _, buffer := range e.uniformBuffers {
		vk.DestroyBuffer(e.device, buffer, nil)
	}

	e.uniformBuffers = nil
	e.uniformBuffersMemory = nil
	e.uniformBuffersMapped = nil
}

func (e *Engine) createUniformBuffers() error {
	bufferSize := vk.DeviceSize(unsafe.Sizeof(UniformBufferObject{}))

	for i := range e.swapChainImages {
		var (
			buffer       vk.Buffer
			bufferMemory vk.DeviceMemory
		)
		err := e.createBuffer(
			bufferSize,
			vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|
				vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit),
			&buffer,
			&bufferMemory,
		)
		if err != nil {
			return errors.Wrapf(err, "creating buffer[%d]", i)
		}

		e.uniformBuffers = append(e.uniformBuffers, buffer)
		e.uniformBuffersMemory = append(e.uniformBuffersMemory, bufferMemory)

		var pData unsafe.Pointer
		res := vk.MapMemory(e.device, bufferMemory, 0, bufferSize, 0, &pData)
		if err := check(res, "map uniform buffer memory"); err != nil {
			return err
		}
		e.uniformBuffersMapped = append(e.uniformBuffersMapped, pData)
	}

	return nil
}

func (e *Engine) createDescriptorPool() error {
	count := uint32(len(e.swapChainImages))

	poolSizes := []vk.DescriptorPoolSize{
		{
			Type:            vk.DescriptorTypeUniformBuffer,
			DescriptorCount: count,
		},
		{
			Type:            vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: count,
		},
	}

	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
		MaxSets:       count,
	}

	var descriptorPool vk.DescriptorPool
	res := vk.CreateDescriptorPool(e.device, &poolInfo, nil, &descriptorPool)
	if err := check(res, "create descriptor pool"); err != nil {
		return err
	}
	e.descriptorPool = descriptorPool

	return nil
}

func (e *Engine) createDescriptorSets() error {
	count := len(e.swapChainImages)

	layouts := make([]vk.DescriptorSetLayout, count)
	for i := range layouts {
		layouts[i] = e.descriptorSetLayout
	}

	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     e.descriptorPool,
		DescriptorSetCount: uint32(count),
		PSetLayouts:        layouts,
	}

	descriptorSets := make([]vk.DescriptorSet, count)
	res := vk.AllocateDescriptorSets(e.device, &allocInfo, &descriptorSets[0])
	if err := check(res, "allocate descriptor sets"); err != nil {
		return err
	}
	e.descriptorSets = descriptorSets

	for i := 0; i < count; i++ {
		bufferInfo := vk.DescriptorBufferInfo{
			Buffer: e.uniformBuffers[i],
			Offset: 0,
			Range:  vk.DeviceSize(vk.WholeSize),
		}

		imageInfo := vk.DescriptorImageInfo{
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			ImageView:   e.textureImageView,
			Sampler:     e.textureSampler,
		}

		descriptorWrites := []vk.WriteDescriptorSet{
			{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          e.descriptorSets[i],
				DstBinding:      uniformBinding,
				DstArrayElement: 0,
				DescriptorType:  vk.DescriptorTypeUniformBuffer,
				DescriptorCount: 1,
				PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
			},
			{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          e.descriptorSets[i],
				DstBinding:      samplerBinding,
				DstArrayElement: 0,
				DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
				DescriptorCount: 1,
				PImageInfo:      []vk.DescriptorImageInfo{imageInfo},
			},
		}

		vk.UpdateDescriptorSets(
			e.device,
			uint32(len(descriptorWrites)),
			descriptorWrites,
			0,
			nil,
		)
	}

	return nil
}
