package providers

import (
	"errors"
	"fmt"
	"github.com/gookit/validate"
	"scoreboard/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks struct tags first, then the cross-field rules tags cannot express.
func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %w", v.Errors)
	}

	if cv.conf.Storage.Driver != "memory" && cv.conf.Storage.Path == "" {
		return errors.New("invalid config: storage.path is required for the " + cv.conf.Storage.Driver + " driver")
	}
	if cv.conf.Logo.MaxBytes < 0 {
		return errors.New("invalid config: logo.maxBytes must not be negative")
	}
	return nil
}
