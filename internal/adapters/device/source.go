// Package device turns touchscreen input into batches of normalized touch
// events.
package device

import (
	"context"

	"github.com/okian/touchgest/internal/domain/model"
)

// Source yields touch events one batch per wakeup.
type Source interface {
	// Next blocks until the next batch is available. It returns io.EOF when
	// the source is exhausted.
	Next(ctx context.Context) ([]model.TouchEvent, error)
	Close() error
}
