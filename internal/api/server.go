package api

import (
	"embed"
	"html/template"
	"io"
	"net/http"

	"github.com/Masterminds/sprig/v3"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html
var templateFS embed.FS

// NewServer wires middleware, serializers, templates, the dashboard routes
// and /metrics into a fresh echo instance.
func NewServer(h *Handler, gatherer prometheus.Gatherer, logger log.Logger) (*echo.Echo, error) {
	renderer, err := newTemplates()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = goJSONSerializer{}
	e.Renderer = renderer

	e.Use(middleware.CORS())
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			level.Error(logger).Log("msg", "panic recovered", "method", c.Request().Method, "uri", c.Request().RequestURI, "err", err, "stack", string(stack))
			return err
		},
	}))
	e.Use(requestLogger(logger))

	h.RegisterRoutes(e)
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return e, nil
}

func requestLogger(logger log.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			lvl := level.Debug(logger)
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				lvl = level.Warn(logger)
			}
			lvl.Log("msg", "request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "err", v.Error)
			return nil
		},
	})
}

// --- TEMPLATES ---

type templates struct {
	t *template.Template
}

func newTemplates() (*templates, error) {
	funcs := sprig.FuncMap()
	funcs["cell"] = formatCell
	funcs["comma"] = func(n int) string { return humanize.Comma(int64(n)) }

	t, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}
	return &templates{t: t}, nil
}

func (t *templates) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return t.t.ExecuteTemplate(w, name, data)
}

// formatCell prints a table cell the way the preview shows nulls.
func formatCell(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return "None"
	case float64:
		return humanize.Ftoa(c)
	case string:
		return c
	default:
		b, err := json.Marshal(c)
		if err != nil {
			return "?"
		}
		return string(b)
	}
}

// --- JSON ---

// goJSONSerializer swaps echo's encoding/json serializer for goccy/go-json.
type goJSONSerializer struct{}

func (goJSONSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (goJSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}
