package render

import (
	"context"
	"log/slog"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

func (e *Engine) createInstance() error {
	if e.cfg.EnableValidation && !e.checkValidationSupport() {
		return ErrValidationUnavailable
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   e.cfg.AppName + "\x00",
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        "No Engine\x00",
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.ApiVersion10,
	}

	extensions := append([]string(nil), e.window.RequiredInstanceExtensions()...)
	if e.cfg.EnableValidation {
		extensions = append(extensions, vk.ExtDebugReportExtensionName+"\x00")
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	if e.cfg.EnableValidation {
		createInfo.EnabledLayerCount = uint32(len(e.cfg.ValidationLayers))
		createInfo.PpEnabledLayerNames = e.cfg.ValidationLayers
	}

	var instance vk.Instance
	if err := check(vk.CreateInstance(&createInfo, nil, &instance), "create Vulkan instance"); err != nil {
		return err
	}
	e.instance = instance

	if err := vk.InitInstance(instance); err != nil {
		return errors.Wrap(err, "loading instance functions")
	}

	return nil
}

func (e *Engine) checkValidationSupport() bool {
	var count uint32
	if vk.EnumerateInstanceLayerProperties(&count, nil) != vk.Success {
		return false
	}
	availableLayers := make([]vk.LayerProperties, count)

	if vk.EnumerateInstanceLayerProperties(&count, availableLayers) != vk.Success {
		return false
	}

	available := make(map[string]struct{}, count)
	for _, layer := range availableLayers[:count] {
		layer.Deref()
		available[vk.ToString(layer.LayerName[:])+"\x00"] = struct{}{}
	}

	for _, validationLayer := range e.cfg.ValidationLayers {
		if _, ok := available[validationLayer]; !ok {
			e.logger.Error("validation layer not found", "layer", validationLayer)
			return false
		}
	}

	return true
}

func (e *Engine) setupDebugCallback() error {
	if !e.cfg.EnableValidation {
		return nil
	}

	createInfo := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit) |
			vk.DebugReportFlags(vk.DebugReportWarningBit) |
			vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit),
		PfnCallback: e.debugReport,
	}

	var callback vk.DebugReportCallback
	res := vk.CreateDebugReportCallback(e.instance, &createInfo, nil, &callback)
	if err := check(res, "create debug report callback"); err != nil {
		return err
	}
	e.debug = callback

	return nil
}

func (e *Engine) debugReport(
	flags vk.DebugReportFlags,
	objectType vk.DebugReportObjectType,
	object uint64,
	location uint,
	messageCode int32,
	pLayerPrefix string,
	pMessage string,
	pUserData unsafe.Pointer,
) vk.Bool32 {
	msg := DebugMessage{
		Flags:   flags,
		Layer:   pLayerPrefix,
		Code:    messageCode,
		Message: pMessage,
	}

	if e.cfg.DebugHook != nil {
		e.cfg.DebugHook(msg)
	} else {
		LogDebugMessage(e.logger, msg)
	}

	return vk.Bool32(vk.False)
}

// LogDebugMessage writes msg to logger at a level matching its flags.
func LogDebugMessage(logger *slog.Logger, msg DebugMessage) {
	level := slog.LevelDebug
	switch {
	case msg.Flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		level = slog.LevelError
	case msg.Flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0,
		msg.Flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		level = slog.LevelWarn
	}

	logger.Log(context.Background(), level, "validation layer",
		"layer", msg.Layer,
		"code", msg.Code,
		"message", msg.Message,
	)
}

func (e *Engine) createSurface() error {
	surface, err := e.window.CreateSurface(e.instance)
	if err != nil {
		return errors.Wrap(err, "cannot create surface within window")
	}
	e.surface = surface

	return nil
}
