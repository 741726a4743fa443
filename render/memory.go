package render

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

func (e *Engine) createBuffer(
	size vk.DeviceSize,
	usage vk.BufferUsageFlags,
	properties vk.MemoryPropertyFlags,
	buffer *vk.Buffer,
	bufferMemory *vk.DeviceMemory,
) error {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	res := vk.CreateBuffer(e.device, &bufferInfo, nil, buffer)
	if err := check(res, "create buffer"); err != nil {
		return err
	}

	var memRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(e.device, *buffer, &memRequirements)
	memRequirements.Deref()

	memTypeIndex, err := e.findMemoryType(memRequirements.MemoryTypeBits, properties)
	if err != nil {
		vk.DestroyBuffer(e.device, *buffer, nil)
		*buffer = vk.NullBuffer
		return err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memTypeIndex,
	}

	res = vk.AllocateMemory(e.device, &allocInfo, nil, bufferMemory)
	if err := check(res, "allocate buffer memory"); err != nil {
		vk.DestroyBuffer(e.device, *buffer, nil)
		*buffer = vk.NullBuffer
		return err
	}

	res = vk.BindBufferMemory(e.device, *buffer, *bufferMemory, 0)
	if err := check(res, "bind buffer memory"); err != nil {
		vk.DestroyBuffer(e.device, *buffer, nil)
		vk.FreeMemory(e.device, *bufferMemory, nil)
		*buffer = vk.NullBuffer
		*bufferMemory = vk.NullDeviceMemory
		return err
	}

	return nil
}

// createDeviceLocalBuffer uploads data into a new device local buffer through
// a host visible staging buffer which is freed before returning.
func (e *Engine) createDeviceLocalBuffer(
	data []byte,
	usage vk.BufferUsageFlags,
	buffer *vk.Buffer,
	bufferMemory *vk.DeviceMemory,
) error {
	bufferSize := vk.DeviceSize(len(data))

	var (
		stagingBuffer       vk.Buffer
		stagingBufferMemory vk.DeviceMemory
	)
	err := e.createBuffer(
		bufferSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit),
		&stagingBuffer,
		&stagingBufferMemory,
	)
	if err != nil {
		return errors.Wrap(err, "creating the staging buffer")
	}

	defer func() {
		vk.DestroyBuffer(e.device, stagingBuffer, nil)
		vk.FreeMemory(e.device, stagingBufferMemory, nil)
	}()

	if err := e.fillMemory(stagingBufferMemory, data); err != nil {
		return err
	}

	err = e.createBuffer(
		bufferSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)|usage,
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		buffer,
		bufferMemory,
	)
	if err != nil {
		return errors.Wrap(err, "creating the device local buffer")
	}

	if err := e.copyBuffer(stagingBuffer, *buffer, bufferSize); err != nil {
		return errors.Wrap(err, "failed to copy the staging buffer")
	}

	return nil
}

// fillMemory copies data to the start of host visible memory.
func (e *Engine) fillMemory(memory vk.DeviceMemory, data []byte) error {
	var pData unsafe.Pointer
	res := vk.MapMemory(e.device, memory, 0, vk.DeviceSize(len(data)), 0, &pData)
	if err := check(res, "map memory"); err != nil {
		return err
	}

	vk.Memcopy(pData, data)
	vk.UnmapMemory(e.device, memory)

	return nil
}

func (e *Engine) createImage(
	width uint32,
	height uint32,
	format vk.Format,
	tiling vk.ImageTiling,
	usage vk.ImageUsageFlags,
	properties vk.MemoryPropertyFlags,
	image *vk.Image,
	imageMemory *vk.DeviceMemory,
) error {
	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        tiling,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		Samples:       vk.SampleCount1Bit,
	}

	res := vk.CreateImage(e.device, &imageInfo, nil, image)
	if err := check(res, "create an image"); err != nil {
		return err
	}

	var memRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(e.device, *image, &memRequirements)
	memRequirements.Deref()

	memTypeIndex, err := e.findMemoryType(memRequirements.MemoryTypeBits, properties)
	if err != nil {
		vk.DestroyImage(e.device, *image, nil)
		*image = vk.NullImage
		return err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memTypeIndex,
	}

	res = vk.AllocateMemory(e.device, &allocInfo, nil, imageMemory)
	if err := check(res, "allocate image memory"); err != nil {
		vk.DestroyImage(e.device, *image, nil)
		*image = vk.NullImage
		return err
	}

	res = vk.BindImageMemory(e.device, *image, *imageMemory, 0)
	if err := check(res, "bind image memory"); err != nil {
		vk.DestroyImage(e.device, *image, nil)
		vk.FreeMemory(e.device, *imageMemory, nil)
		*image = vk.NullImage
		*imageMemory = vk.NullDeviceMemory
		return err
	}

	return nil
}

func (e *Engine) findMemoryType(
	typeFilter uint32,
	properties vk.MemoryPropertyFlags,
) (uint32, error) {
	var memProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(e.physicalDevice, &memProperties)
	memProperties.Deref()

	for i := uint32(0); i < memProperties.MemoryTypeCount; i++ {
		memType := memProperties.MemoryTypes[i]
		memType.Deref()

		if typeFilter&(1<<i) == 0 {
			continue
		}

		if memType.PropertyFlags&properties != properties {
			continue
		}

		return i, nil
	}

	return 0, errors.New("failed to find suitable memory type")
}

func (e *Engine) createImageView(
	image vk.Image,
	format vk.Format,
	aspectFlags vk.ImageAspectFlags,
) (vk.ImageView, error) {
	createInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspectFlags,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	var imageView vk.ImageView
	res := vk.CreateImageView(e.device, &createInfo, nil, &imageView)
	if err := check(res, "create image view"); err != nil {
		return vk.NullImageView, err
	}

	return imageView, nil
}

func (e *Engine) beginSingleTimeCommands() (vk.CommandBuffer, error) {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		Level:              vk.CommandBufferLevelPrimary,
		CommandPool:        e.commandPool,
		CommandBufferCount: 1,
	}

	commandBuffers := make([]vk.CommandBuffer, 1)
	res := vk.AllocateCommandBuffers(e.device, &allocInfo, commandBuffers)
	if err := check(res, "allocate command buffer"); err != nil {
		return nil, err
	}
	commandBuffer := commandBuffers[0]

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}

	res = vk.BeginCommandBuffer(commandBuffer, &beginInfo)
	if err := check(res, "begin command buffer"); err != nil {
		vk.FreeCommandBuffers(e.device, e.commandPool, 1, commandBuffers)
		return nil, err
	}

	return commandBuffer, nil
}

func (e *Engine) endSingleTimeCommands(commandBuffer vk.CommandBuffer) error {
	commandBuffers := []vk.CommandBuffer{commandBuffer}

	defer func() {
		vk.FreeCommandBuffers(e.device, e.commandPool, 1, commandBuffers)
	}()

	res := vk.EndCommandBuffer(commandBuffer)
	if err := check(res, "end command buffer"); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    commandBuffers,
	}

	res = vk.QueueSubmit(e.graphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence)
	if err := check(res, "submit to graphics queue"); err != nil {
		return err
	}

	return check(vk.QueueWaitIdle(e.graphicsQueue), "wait on graphics queue idle")
}

func (e *Engine) copyBuffer(
	srcBuffer vk.Buffer,
	dstBuffer vk.Buffer,
	size vk.DeviceSize,
) error {
	commandBuffer, err := e.beginSingleTimeCommands()
	if err != nil {
		return errors.Wrap(err, "failed to begin single time commands")
	}

	copyRegion := vk.BufferCopy{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      size,
	}

	vk.CmdCopyBuffer(commandBuffer, srcBuffer, dstBuffer, 1, []vk.BufferCopy{copyRegion})

	return e.endSingleTimeCommands(commandBuffer)
}

func (e *Engine) transitionImageLayout(
	image vk.Image,
	format vk.Format,
	oldLayout vk.ImageLayout,
	newLayout vk.ImageLayout,
) error {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	if newLayout == vk.ImageLayoutDepthStencilAttachmentOptimal {
		barrier.SubresourceRange.AspectMask = vk.ImageAspectFlags(vk.ImageAspectDepthBit)
		if hasStencilComponent(format) {
			barrier.SubresourceRange.AspectMask |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
		}
	}

	var (
		sourceStage      vk.PipelineStageFlags
		destinationStage vk.PipelineStageFlags
	)

	switch {
	case oldLayout == vk.ImageLayoutUndefined &&
		newLayout == vk.ImageLayoutTransferDstOptimal:

		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)

		sourceStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		destinationStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)

	case oldLayout == vk.ImageLayoutTransferDstOptimal &&
		newLayout == vk.ImageLayoutShaderReadOnlyOptimal:

		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)

		sourceStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		destinationStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)

	case oldLayout == vk.ImageLayoutUndefined &&
		newLayout == vk.ImageLayoutDepthStencilAttachmentOptimal:

		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit) |
			vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit)

		sourceStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		destinationStage = vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit)

	default:
		return errors.Newf("unsupported layout transition from %d to %d",
			oldLayout, newLayout)
	}

	commandBuffer, err := e.beginSingleTimeCommands()
	if err != nil {
		return errors.Wrap(err, "failed to begin single time commands")
	}

	vk.CmdPipelineBarrier(
		commandBuffer,
		sourceStage, destinationStage,
		0,
		0, nil,
		0, nil,
		1, []vk.ImageMemoryBarrier{barrier},
	)

	return e.endSingleTimeCommands(commandBuffer)
}

func (e *Engine) copyBufferToImage(
	buffer vk.Buffer,
	image vk.Image,
	width, height uint32,
) error {
	commandBuffer, err := e.beginSingleTimeCommands()
	if err != nil {
		return errors.Wrap(err, "failed to begin single time command buffer")
	}

	region := vk.BufferImageCopy{
		BufferOffset:      0,
		BufferRowLength:   0,
		BufferImageHeight: 0,

		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},

		ImageOffset: vk.Offset3D{
			X: 0, Y: 0, Z: 0,
		},

		ImageExtent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
	}

	vk.CmdCopyBufferToImage(
		commandBuffer,
		buffer,
		image,
		vk.ImageLayoutTransferDstOptimal,
		1,
		[]vk.BufferImageCopy{region},
	)

	return e.endSingleTimeCommands(commandBuffer)
}
