package providers

import (
	"errors"
	"fmt"

	"github.com/gookit/validate"

	"nltrack/internal/structures"
)

// ErrMissingSigningSecret is a deployment mistake, not bad input: startup must stop.
var ErrMissingSigningSecret = errors.New("tracking.signingSecret is not configured")

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	if cv.conf.Tracking.SigningSecret == "" {
		return ErrMissingSigningSecret
	}

	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.One())
	}
	return nil
}
