package generator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-widgetgen/pkg/compiler"
	"github.com/goliatone/go-widgetgen/pkg/notify"
	"github.com/goliatone/go-widgetgen/pkg/page"
)

var (
	// ErrSuperseded is returned when a newer request, or a mutation of the
	// region, replaced this request before its response could be applied.
	// The response is discarded.
	ErrSuperseded = errors.New("generator: superseded by a newer request")
	// ErrFormNotFound is returned when the widget form is not in the page.
	ErrFormNotFound = errors.New("generator: form not found")
)

// UsageError reports an invalid invocation. It is logged and returned but
// never shown to the operator.
type UsageError struct {
	Op  string
	Err error
}

func (e *UsageError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("generator: %s: %v", e.Op, e.Err)
}

func (e *UsageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (g *Generator) usage(op string, err error) error {
	uerr := &UsageError{Op: op, Err: err}
	g.logger.Error("widget generator usage error", zap.String("op", op), zap.Error(err))
	return uerr
}

// fragmentFailed applies the fragment failure policy: the target region is
// left as it was, the operator is notified and the error is returned. No
// retry is attempted. A failure of a request that was already superseded is
// discarded like its response would have been, and a cancelled request is
// returned without a notice.
func (g *Generator) fragmentFailed(ctx context.Context, op string, ticket page.Ticket, err error) error {
	if !g.page.Current(ticket) {
		return g.superseded(op, ticket.Selector, err)
	}
	if cancelled(ctx, err) {
		g.logger.Debug("fragment load cancelled", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("generator: %s: %w", op, err)
	}
	g.logger.Warn("fragment load failed",
		zap.String("op", op),
		zap.String("region", ticket.Selector),
		zap.Error(err),
	)
	g.notifier.Notify(ctx, notify.Notice{Kind: notify.KindFragment, Message: err.Error()})
	return fmt.Errorf("generator: %s: %w", op, err)
}

func (g *Generator) superseded(op, region string, err error) error {
	g.logger.Debug("discarding superseded failure",
		zap.String("op", op),
		zap.String("region", region),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %s", ErrSuperseded, op)
}

func cancelled(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		(ctx != nil && ctx.Err() != nil)
}

// commitFailed maps a page commit failure. Stale tickets become
// ErrSuperseded; anything else is returned as is.
func (g *Generator) commitFailed(op, region string, err error) error {
	if errors.Is(err, page.ErrStale) {
		g.logger.Debug("discarding superseded response", zap.String("op", op), zap.String("region", region))
		return fmt.Errorf("%w: %s", ErrSuperseded, op)
	}
	return fmt.Errorf("generator: %s: %w", op, err)
}

func (g *Generator) compileFailed(ctx context.Context, ticket page.Ticket, err error) error {
	if !g.page.Current(ticket) {
		return g.superseded("generate", ticket.Selector, err)
	}
	if cancelled(ctx, err) {
		g.logger.Debug("compile cancelled", zap.Error(err))
		return err
	}
	var (
		serr *compiler.ServerError
		nerr *compiler.NetworkError
	)
	switch {
	case errors.As(err, &serr):
		g.notifier.Notify(ctx, notify.Notice{Kind: serr.Type, Message: serr.Message})
	case errors.As(err, &nerr):
		g.notifier.Notify(ctx, notify.Notice{Kind: notify.KindNetwork, Message: nerr.Error()})
	default:
		return g.usage("generate", err)
	}
	g.logger.Warn("compile failed", zap.Error(err))
	return err
}
