package service

import (
	"context"
	stderrors "errors"
	"time"

	"AssetCarePlatform/pkg/errors"
)

// withUpstreamTimeout выполняет обращение к внешнему коллаборатору с таймаутом.
// Истекший дедлайн становится UPSTREAM_TIMEOUT, прочие сбои коллаборатора
// остаются как есть и классифицируются вызывающим.
func withUpstreamTimeout(ctx context.Context, timeout time.Duration, operation string, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(callCtx)
	if err == nil {
		return nil
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, errors.ErrUpstreamTimeout, operation+" timed out").
			WithContext(ctx)
	}

	return err
}
