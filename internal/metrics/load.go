package metrics

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"yelp-explorer/internal/dataset"
	"yelp-explorer/internal/engine"
)

// InstrumentLoad wraps load so every run is counted by result and timed.
func (m *Metrics) InstrumentLoad(load engine.LoadFunc) engine.LoadFunc {
	return func(ctx context.Context) (*engine.Dataset, error) {
		start := time.Now()
		ds, err := load(ctx)
		m.LoadDuration.Observe(time.Since(start).Seconds())
		m.Loads.WithLabelValues(loadResult(err)).Inc()
		return ds, err
	}
}

func loadResult(err error) string {
	var (
		de *dataset.DownloadError
		pe *engine.ParseError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &de):
		return "download_error"
	case errors.As(err, &pe):
		return "parse_error"
	default:
		return "error"
	}
}
