package cli

import (
	"context"

	"github.com/vanderheijden86/spectra/internal/datasource"
	"github.com/vanderheijden86/spectra/pkg/watcher"
)

// watchSource watches file sources for changes. Other sources, or a watcher
// that cannot start, yield a nil channel and a no-op stop.
func (a *app) watchSource(ctx context.Context, spec string) (<-chan struct{}, func()) {
	src, err := datasource.Parse(spec)
	if err != nil || !src.IsFile() {
		return nil, func() {}
	}
	w, err := watcher.New(src.Location,
		watcher.WithOnError(func(err error) {
			a.logger.Warn("watching source", "path", src.Location, "err", err)
		}),
	)
	if err != nil {
		a.logger.Warn("live reload disabled", "path", src.Location, "err", err)
		return nil, func() {}
	}
	if err := w.Start(ctx); err != nil {
		a.logger.Warn("live reload disabled", "path", src.Location, "err", err)
		return nil, func() {}
	}
	a.logger.Debug("watching source", "path", w.Path(), "polling", w.IsPolling())
	return w.Changed(), w.Stop
}
