package generator

import (
	"context"
	"errors"

	"github.com/goliatone/go-widgetgen/pkg/compiler"
)

// Operation is a programmatic request against a Generator. The set of
// variants is closed: ReadCode, GenerateCode, Configure and Bind.
type Operation interface {
	accept(ctx context.Context, h OperationHandler) (Outcome, error)
}

// ReadCode returns the current contents of the code field.
type ReadCode struct{}

// GenerateCode compiles the current forms. Callback, when set, receives the
// result.
type GenerateCode struct {
	Callback Callback
}

// Configure binds the generator and registers the callback used when
// generation is triggered from a GenerateClicked event.
type Configure struct {
	Callback Callback
}

// Bind enables event handling without doing anything else.
type Bind struct{}

// Outcome is the result of an Operation. Result is set only by GenerateCode.
type Outcome struct {
	Code   string
	Result *compiler.Result
}

// OperationHandler has one method per Operation variant.
type OperationHandler interface {
	ReadCode(ctx context.Context, op ReadCode) (Outcome, error)
	GenerateCode(ctx context.Context, op GenerateCode) (Outcome, error)
	Configure(ctx context.Context, op Configure) (Outcome, error)
	Bind(ctx context.Context, op Bind) (Outcome, error)
}

func (op ReadCode) accept(ctx context.Context, h OperationHandler) (Outcome, error) {
	return h.ReadCode(ctx, op)
}

func (op GenerateCode) accept(ctx context.Context, h OperationHandler) (Outcome, error) {
	return h.GenerateCode(ctx, op)
}

func (op Configure) accept(ctx context.Context, h OperationHandler) (Outcome, error) {
	return h.Configure(ctx, op)
}

func (op Bind) accept(ctx context.Context, h OperationHandler) (Outcome, error) {
	return h.Bind(ctx, op)
}

// Dispatch routes op to the matching method of h.
func Dispatch(ctx context.Context, op Operation, h OperationHandler) (Outcome, error) {
	if op == nil {
		return Outcome{}, errors.New("generator: nil operation")
	}
	if h == nil {
		return Outcome{}, errors.New("generator: nil operation handler")
	}
	return op.accept(ctx, h)
}

// Do runs op against g. Every operation binds event handling first.
func (g *Generator) Do(ctx context.Context, op Operation) (Outcome, error) {
	if op == nil {
		return Outcome{}, g.usage("do", errors.New("nil operation"))
	}
	g.bind()
	return Dispatch(ctx, op, operations{g: g})
}

type operations struct {
	g *Generator
}

var _ OperationHandler = operations{}

func (o operations) ReadCode(context.Context, ReadCode) (Outcome, error) {
	return Outcome{Code: o.g.Code()}, nil
}

func (o operations) GenerateCode(ctx context.Context, op GenerateCode) (Outcome, error) {
	result, err := o.g.Generate(ctx, op.Callback)
	if err != nil {
		return Outcome{Code: o.g.Code()}, err
	}
	return Outcome{Code: result.Code, Result: &result}, nil
}

func (o operations) Configure(_ context.Context, op Configure) (Outcome, error) {
	o.g.setCallback(op.Callback)
	return Outcome{Code: o.g.Code()}, nil
}

func (o operations) Bind(context.Context, Bind) (Outcome, error) {
	return Outcome{Code: o.g.Code()}, nil
}
