package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	widgetgen "github.com/goliatone/go-widgetgen"
	"github.com/goliatone/go-widgetgen/internal/config"
	"github.com/goliatone/go-widgetgen/pkg/notify"
)

// openSession fetches the generator screen and binds a generator to it.
func openSession(ctx context.Context, cfg config.Config, logger *zap.Logger, stderr io.Writer) (*widgetgen.Generator, error) {
	return widgetgen.Open(ctx, cfg.PageURL,
		widgetgen.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		widgetgen.WithLogger(logger),
		widgetgen.WithSelectors(cfg.Selectors.Generator()),
		widgetgen.WithNotifier(notify.Func(func(_ context.Context, n notify.Notice) {
			fmt.Fprintln(stderr, noticeStyle.Render(fmt.Sprintf("[%s] %s", n.Kind, n.Message)))
		})),
	)
}
