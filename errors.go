package thermal

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrMissingMetadata   = errors.New("missing metadata")
	ErrMalformedMetadata = errors.New("malformed metadata")
	ErrUnreadableRaster  = errors.New("unreadable raster")
	ErrWriteFailure      = errors.New("write failure")
	ErrInterrupted       = errors.New("interrupted")
)

// classify tags err with kind unless it already carries it.
func classify(kind, err error) error {
	if err == nil || errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
