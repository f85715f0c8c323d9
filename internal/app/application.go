package app

import (
	"log/slog"

	"github.com/YaoxuanLiu37/transitpapers/internal/appconf"
	"github.com/YaoxuanLiu37/transitpapers/internal/clock"
	"github.com/YaoxuanLiu37/transitpapers/internal/metrics"
	"github.com/YaoxuanLiu37/transitpapers/internal/papers"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config     appconf.Config
	Logger     *slog.Logger
	PaperStore *papers.Store
	Clock      clock.Clock
	Metrics    *metrics.Metrics
}
