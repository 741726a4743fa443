package render

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// ErrValidationUnavailable is returned by Bootstrap when validation was
// requested but a validation layer is not installed.
var ErrValidationUnavailable = errors.New("validation layers requested but not available")

// ErrNotBootstrapped is returned when drawing before Bootstrap succeeded.
var ErrNotBootstrapped = errors.New("render engine is not bootstrapped")

// check converts a Vulkan result into an error naming the failed operation.
func check(res vk.Result, op string) error {
	if err := vk.Error(res); err != nil {
		return errors.Wrapf(err, "failed to %s", op)
	}
	return nil
}
