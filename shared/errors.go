package shared

import (
	"errors"
	"fmt"
)

var (
	ErrArrayNotInitialized      = errors.New("array not initialized")
	ErrStateMetadataFileMissing = errors.New("metadata file is missing")
)

type ConfigMismatchError struct {
	Param    string
	Expected string
	Found    string
	DataDir  string
}

func (err ConfigMismatchError) Error() string {
	return fmt.Sprintf("`%v` config mismatch; expected: %v, found: %v, datadir: %v",
		err.Param, err.Expected, err.Found, err.DataDir)
}
