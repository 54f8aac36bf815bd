package httpapi

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// validatorInstance is a process-wide singleton: validator.Validate is
// safe for concurrent use once built and struct caching makes repeated
// construction wasteful.
var (
	validatorInstance *validator.Validate
	validatorOnce     sync.Once
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInstance = validator.New()
	})
	return validatorInstance
}
