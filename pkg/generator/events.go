package generator

import (
	"context"
	"errors"
)

// ErrNotBound is returned by Handle before any Operation has been run.
var ErrNotBound = errors.New("generator: events are not bound")

// Event is an operator action on the page.
type Event interface {
	isEvent()
}

// WidgetSelected fires when the widget select changes.
type WidgetSelected struct {
	WidgetID string
}

// SkinSelected fires when the skin select changes.
type SkinSelected struct {
	SkinID string
}

// SetupClicked fires when the operator asks to rebuild the forms from the
// code field.
type SetupClicked struct{}

// GenerateClicked fires when the operator asks for code.
type GenerateClicked struct{}

func (WidgetSelected) isEvent()  {}
func (SkinSelected) isEvent()    {}
func (SetupClicked) isEvent()    {}
func (GenerateClicked) isEvent() {}

// Handle routes ev to its handler. GenerateClicked uses the callback
// registered with Configure or WithCallback.
func (g *Generator) Handle(ctx context.Context, ev Event) error {
	if !g.bound() {
		return g.usage("handle", ErrNotBound)
	}
	switch ev := ev.(type) {
	case WidgetSelected:
		return g.OnWidgetChange(ctx, ev.WidgetID)
	case SkinSelected:
		return g.OnSkinChange(ctx, ev.SkinID)
	case SetupClicked:
		return g.Reset(ctx)
	case GenerateClicked:
		_, err := g.Generate(ctx, g.currentCallback())
		return err
	case nil:
		return g.usage("handle", errors.New("nil event"))
	default:
		return g.usage("handle", errors.New("unknown event"))
	}
}
