package generator

// State is the position of a page in the generate/decompile cycle.
type State int

const (
	// Idle: no widget selected.
	Idle State = iota
	// WidgetChosen: widget selected and its skin list rendered.
	WidgetChosen
	// SkinChosen: skin selected and the config form rendered, either from the
	// picker or from a decompiled code string.
	SkinChosen
	// CodeGenerated: the code field holds the result of a successful compile.
	CodeGenerated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case WidgetChosen:
		return "widget_chosen"
	case SkinChosen:
		return "skin_chosen"
	case CodeGenerated:
		return "code_generated"
	default:
		return "unknown"
	}
}
