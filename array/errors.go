package array

import (
	"errors"

	"github.com/spacemeshos/raid/config"
	"github.com/spacemeshos/raid/shared"
)

type (
	Config              = config.Config
	ConfigMismatchError = shared.ConfigMismatchError
)

var (
	ErrLocked           = errors.New("array is locked by another process")
	ErrNoRestorer       = errors.New("stripe layout cannot restore members")
	ErrPayloadTooShort  = errors.New("payload ended before the declared size")
	ErrMetadataMismatch = errors.New("metadata is inconsistent with the drives")
)
