package widgetcatalog

import (
	"net/http"

	"go.uber.org/zap"
)

type GuardFunc func(r *http.Request) error

type Options struct {
	GeneratePath string
	SkinsPath    string
	SkinFormPath string
	SetupPath    string
	AssetPath    string
	WidgetParam  string
	SkinParam    string
	CodeParam    string
	Title        string
	Guard        GuardFunc

	// BasePath prefixes every URL rendered into fragments. RegisterRoutes sets
	// it from its basePath argument.
	BasePath string

	Catalog  *Catalog
	Renderer *Renderer
	Logger   *zap.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		GeneratePath: "/widget/generate",
		SkinsPath:    "/widget/skins",
		SkinFormPath: "/widget/skins/form",
		SetupPath:    "/widget/setup",
		AssetPath:    "/assets/widget-generator.js",
		WidgetParam:  "widget",
		SkinParam:    "skin",
		CodeParam:    "code",
		Title:        "Widget generator",
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	def := DefaultOptions()
	fill := func(value *string, fallback string) {
		if *value == "" {
			*value = fallback
		}
	}
	fill(&opts.GeneratePath, def.GeneratePath)
	fill(&opts.SkinsPath, def.SkinsPath)
	fill(&opts.SkinFormPath, def.SkinFormPath)
	fill(&opts.SetupPath, def.SetupPath)
	fill(&opts.AssetPath, def.AssetPath)
	fill(&opts.WidgetParam, def.WidgetParam)
	fill(&opts.SkinParam, def.SkinParam)
	fill(&opts.CodeParam, def.CodeParam)
	fill(&opts.Title, def.Title)
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

func WithCatalog(cat *Catalog) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Catalog = cat
	}
}

func WithRenderer(r *Renderer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Renderer = r
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithBasePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.BasePath = path
	}
}

func WithTitle(title string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Title = title
	}
}

func WithGeneratePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.GeneratePath = path
	}
}

func WithSkinsPath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SkinsPath = path
	}
}

func WithSkinFormPath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SkinFormPath = path
	}
}

func WithSetupPath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SetupPath = path
	}
}

func (o Options) links() links {
	return links{
		generate: mountPath(o.BasePath, o.GeneratePath),
		skins:    mountPath(o.BasePath, o.SkinsPath),
		skinForm: mountPath(o.BasePath, o.SkinFormPath),
		setup:    mountPath(o.BasePath, o.SetupPath),
		asset:    mountPath(o.BasePath, o.AssetPath),
	}
}
