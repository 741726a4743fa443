package render

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

func (e *Engine) createCommandPool() error {
	poolInfo := vk.CommandPoolCreateInfo{
		SType: vk.StructureTypeCommandPoolCreateInfo,
		Flags: vk.CommandPoolCreateFlags(
			vk.CommandPoolCreateResetCommandBufferBit,
		),
		QueueFamilyIndex: e.families.Graphics.Get(),
	}

	var commandPool vk.CommandPool
	res := vk.CreateCommandPool(e.device, &poolInfo, nil, &commandPool)
	if err := check(res, "create command pool"); err != nil {
		return err
	}
	e.commandPool = commandPool

	return nil
}

// createCommandBuffers allocates and records one command buffer per swap
// chain image. They are recorded once and only recorded again after the swap
// chain is recreated.
func (e *Engine) createCommandBuffers() error {
	count := uint32(len(e.swapChainFramebuffers))

	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        e.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}

	commandBuffers := make([]vk.CommandBuffer, count)
	res := vk.AllocateCommandBuffers(e.device, &allocInfo, commandBuffers)
	if err := check(res, "allocate command buffers"); err != nil {
		return err
	}
	e.commandBuffers = commandBuffers

	for i, commandBuffer := range e.commandBuffers {
		if err := e.recordCommandBuffer(commandBuffer, uint32(i)); err != nil {
			return errors.Wrapf(err, "recording command buffer %d", i)
		}
	}

	return nil
}

func (e *Engine) cleanupCommandBuffers() {
	if len(e.commandBuffers) == 0 {
		return
	}

	vk.FreeCommandBuffers(
		e.device,
		e.commandPool,
		uint32(len(e.commandBuffers)),
		e.commandBuffers,
	)
	e.commandBuffers = nil
}

func (e *Engine) recordCommandBuffer(
	commandBuffer vk.CommandBuffer,
	imageIndex uint32,
) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit),
	}

	res := vk.BeginCommandBuffer(commandBuffer, &beginInfo)
	if err := check(res, "begin recording command buffer"); err != nil {
		return err
	}

	var clearValues [attachmentCount]vk.ClearValue

	clearValues[colorAttachment].SetColor(e.cfg.ClearColor[:])
	clearValues[depthAttachment].SetDepthStencil(1, 0)

	renderPassInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  e.renderPass,
		Framebuffer: e.swapChainFramebuffers[imageIndex],
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{
				X: 0,
				Y: 0,
			},
			Extent: e.swapChainExtent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues[:],
	}

	vk.CmdBeginRenderPass(commandBuffer, &renderPassInfo, vk.SubpassContentsInline)
	vk.CmdBindPipeline(commandBuffer, vk.PipelineBindPointGraphics, e.pipeline)

	vertexBuffers := []vk.Buffer{e.vertexBuffer}
	offsets := []vk.DeviceSize{0}
	vk.CmdBindVertexBuffers(commandBuffer, 0, 1, vertexBuffers, offsets)

	vk.CmdBindIndexBuffer(commandBuffer, e.indexBuffer, 0, vk.IndexTypeUint32)

	vk.CmdBindDescriptorSets(
		commandBuffer,
		vk.PipelineBindPointGraphics,
		e.pipelineLayout,
		0,
		1,
		[]vk.DescriptorSet{e.descriptorSets[imageIndex]},
		0,
		nil,
	)

	vk.CmdDrawIndexed(commandBuffer, e.indexCount, 1, 0, 0, 0)
	vk.CmdEndRenderPass(commandBuffer)

	return check(vk.EndCommandBuffer(commandBuffer), "record command buffer")
}
