package dispatch

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

// Handler executes a request.
type Handler func(ctx context.Context, req Request) (any, error)

// Interceptor wraps a Handler.
type Interceptor func(ctx context.Context, req Request, next Handler) (any, error)

func chain(h Handler, ics ...Interceptor) Handler {
	for i := len(ics) - 1; i >= 0; i-- {
		ic, next := ics[i], h
		h = func(ctx context.Context, req Request) (any, error) {
			return ic(ctx, req, next)
		}
	}
	return h
}

// Logging records command metadata for every dispatch.
func Logging(log *zap.Logger) Interceptor {
	return func(ctx context.Context, req Request, next Handler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)

		// metadata only, never payloads
		log.Info("dispatch",
			zap.String("command", req.Command()),
			zap.String("code", CodeOf(err).String()),
			zap.Duration("dur", time.Since(start)),
		)
		return resp, err
	}
}

// Recover turns a panic in the handler into an internal error.
func Recover(log *zap.Logger) Interceptor {
	return func(ctx context.Context, req Request, next Handler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("command", req.Command()),
				)
				resp, err = nil, &Error{Code: CodeInternal, Msg: msgInternal}
			}
		}()
		return next(ctx, req)
	}
}
