package array

import (
	"errors"

	"go.uber.org/zap"

	"github.com/spacemeshos/raid/config"
)

type option struct {
	cfg    *config.Config
	logger *zap.Logger
}

func (o *option) validate() error {
	if o.cfg == nil {
		return errors.New("no config provided")
	}
	return config.Validate(*o.cfg)
}

type OptionFunc func(*option) error

// WithConfig sets the geometry and location of the array.
func WithConfig(cfg config.Config) OptionFunc {
	return func(o *option) error {
		o.cfg = &cfg
		return nil
	}
}

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(o *option) error {
		if logger == nil {
			return errors.New("logger is nil")
		}
		o.logger = logger
		return nil
	}
}
