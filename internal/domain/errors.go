package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAsset       = errors.New("missing asset")
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrFileTooLarge       = errors.New("file too large")
	ErrCorruptImage       = errors.New("corrupt image")
	ErrImageTooSmall      = errors.New("image too small")
	ErrCompositionFailure = errors.New("composition failure")
	ErrStorageFailure     = errors.New("storage failure")
	ErrInvalidStyle       = errors.New("invalid style options")
	ErrBatchTooLarge      = errors.New("batch too large")
	ErrEmptyBatch         = errors.New("empty batch")
	ErrNotFound           = errors.New("not found")
)

// AssetError reports why an uploaded asset was rejected. Kind is one of the
// validator sentinels and is reachable through errors.Is.
type AssetError struct {
	Kind     error
	Filename string
	Reason   string
}

func (e *AssetError) Error() string {
	if e.Filename == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Filename, e.Reason)
}

func (e *AssetError) Unwrap() error { return e.Kind }

// IsAssetError reports whether err was produced by asset validation.
func IsAssetError(err error) bool {
	var ae *AssetError
	return errors.As(err, &ae)
}
