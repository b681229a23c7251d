// Package dbctx bounds store calls with a per-operation deadline.
package dbctx

import (
	"context"
	"time"
)

// OpTimeout is the default budget for a single store round trip.
const OpTimeout = 5 * time.Second

// WithTimeout returns ctx unchanged when it already expires within d,
// otherwise it wraps ctx in context.WithTimeout(ctx, d).
// The returned cancel is always safe to defer:
//
//	ctx, cancel := dbctx.WithTimeout(parent, dbctx.OpTimeout)
//	defer cancel()
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if err := ctx.Err(); err != nil {
		return ctx, func() {}
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) <= d {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
