package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/goliatone/go-widgetgen/components/widgetcatalog"
)

type appConfig struct {
	BasePath    string
	CatalogPath string
	Logger      *zap.Logger
}

// fiberMux mounts net/http handlers on a fiber app.
type fiberMux struct {
	app *fiber.App
}

func (m fiberMux) Handle(pattern string, handler http.Handler) {
	m.app.All(pattern, adaptor.HTTPHandler(handler))
}

func newApp(cfg appConfig) (*fiber.App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	fns := []widgetcatalog.OptionFn{widgetcatalog.WithLogger(logger)}
	if cfg.CatalogPath != "" {
		f, err := os.Open(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("open catalog: %w", err)
		}
		defer f.Close()
		cat, err := widgetcatalog.LoadCatalog(f)
		if err != nil {
			return nil, err
		}
		fns = append(fns, widgetcatalog.WithCatalog(cat))
	}

	app := fiber.New(fiber.Config{
		AppName:               "widgetgen devserver",
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	patterns, err := widgetcatalog.RegisterRoutes(fiberMux{app: app}, cfg.BasePath, fns...)
	if err != nil {
		return nil, err
	}
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "routes": patterns})
	})
	logger.Debug("catalog routes mounted", zap.Strings("patterns", patterns))
	return app, nil
}
