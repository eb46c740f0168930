package service

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrStoreUnavailable marks a transient infrastructure failure. Callers may
// retry the whole operation.
var ErrStoreUnavailable = errors.New("store unavailable")

// storeTimeout bounds every individual store call so nothing in the core
// blocks indefinitely on a stalled database.
const storeTimeout = 5 * time.Second

// readStore runs an idempotent read with a bounded timeout, retrying once on
// timeout before surfacing ErrStoreUnavailable.
func readStore[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	v, err := callStore(ctx, fn)
	if err != nil && errors.Is(err, ErrStoreUnavailable) {
		return callStore(ctx, fn)
	}
	return v, err
}

// writeStore runs a write with a bounded timeout. Writes are never retried:
// a duplicate side effect is worse than a surfaced failure.
func writeStore(ctx context.Context, fn func(context.Context) error) error {
	_, err := callStore(ctx, func(c context.Context) (struct{}, error) {
		return struct{}{}, fn(c)
	})
	return err
}

func callStore[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	v, err := fn(cctx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return v, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return v, err
}
