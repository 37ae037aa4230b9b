package api

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"yelp-explorer/internal/dashboard"
	"yelp-explorer/internal/dataset"
	"yelp-explorer/internal/engine"
	"yelp-explorer/internal/metrics"
	"yelp-explorer/internal/models"
)

const (
	pageTitle       = "Yelp Dataset Analysis App"
	pageDescription = "This app demonstrates data visualization with the Yelp dataset."

	previewRows = 10
)

type Handler struct {
	cache   *engine.Cache
	metrics *metrics.Metrics
	logger  log.Logger
}

func NewHandler(cache *engine.Cache, m *metrics.Metrics, logger log.Logger) *Handler {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Handler{cache: cache, metrics: m, logger: logger}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.GetPage)

	api := e.Group("/api")
	api.GET("/status", h.GetStatus)
	api.GET("/columns", h.GetColumns)
	api.GET("/preview", h.GetPreview)
	api.GET("/profile", h.GetProfile)
	api.GET("/chart", h.GetChart)
	api.GET("/chart.png", h.GetChartPNG)
	api.POST("/reload", h.Reload)
}

// --- HELPERS ---

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func requestFrom(c echo.Context) dashboard.Request {
	return dashboard.Request{X: c.QueryParam("x"), Y: c.QueryParam("y")}
}

// dataset blocks until the dataset is loaded or the request goes away.
func (h *Handler) dataset(c echo.Context) (*engine.Dataset, error) {
	ds, err := h.cache.Get(c.Request().Context())
	if err != nil {
		return nil, loadError(err)
	}
	return ds, nil
}

// loadError maps load failures onto HTTP errors: download failures are an
// upstream problem, everything else is ours.
func loadError(err error) *echo.HTTPError {
	var (
		de *dataset.DownloadError
		pe *engine.ParseError
	)
	switch {
	case errors.As(err, &de):
		return echo.NewHTTPError(http.StatusBadGateway, models.ErrorResponse{Error: err.Error(), Kind: "download"}).SetInternal(err)
	case errors.As(err, &pe):
		return echo.NewHTTPError(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error(), Kind: "parse"}).SetInternal(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusServiceUnavailable, models.ErrorResponse{Error: err.Error(), Kind: "canceled"}).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error(), Kind: "load"}).SetInternal(err)
	}
}

func (h *Handler) page(ds *engine.Dataset, req dashboard.Request) dashboard.View {
	v := dashboard.Page(ds.Table, ds.Numeric, req)
	if h.metrics != nil {
		h.metrics.Renders.WithLabelValues(string(v.State)).Inc()
	}
	return v
}

// --- HANDLERS ---

type pageData struct {
	Title       string
	Description string
	Error       string

	Rows    int
	Columns []string
	Types   []engine.ColumnType
	Numeric []string
	Preview [][]interface{}

	View      dashboard.View
	ChartSpec template.JS
}

// GetPage renders the whole dashboard for the current picks. Load failures
// replace the dashboard with the error; render failures only replace the
// chart.
func (h *Handler) GetPage(c echo.Context) error {
	data := pageData{Title: pageTitle, Description: pageDescription}

	ds, err := h.cache.Get(c.Request().Context())
	if err != nil {
		he := loadError(err)
		level.Error(h.logger).Log("msg", "dataset load failed", "err", err)
		data.Error = err.Error()
		return c.Render(he.Code, "index.html", data)
	}

	data.Rows = ds.Table.NumRows()
	data.Columns = ds.Table.Columns()
	data.Types = ds.Table.Types()
	data.Numeric = ds.Numeric
	data.Preview = ds.Table.Rows(0, previewRows)
	data.View = h.page(ds, requestFrom(c))

	if data.View.Chart != nil {
		spec, err := json.Marshal(data.View.Chart)
		if err != nil {
			return errors.Wrap(err, "encode chart")
		}
		data.ChartSpec = template.JS(spec)
	}
	return c.Render(http.StatusOK, "index.html", data)
}

// GetStatus reports whether the dataset is in memory without loading it.
func (h *Handler) GetStatus(c echo.Context) error {
	ds, ok := h.cache.Peek()
	if !ok {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{"ready": false})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ready":     true,
		"rows":      ds.Table.NumRows(),
		"source":    ds.Source,
		"loaded_at": ds.LoadedAt,
	})
}

func (h *Handler) GetColumns(c echo.Context) error {
	ds, err := h.dataset(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.ColumnsResponse{
		Columns: ds.Table.Columns(),
		Numeric: ds.Numeric,
		Types:   ds.Table.Types(),
		Rows:    ds.Table.NumRows(),
	})
}

// GetPreview pages through the table, ten rows by default.
func (h *Handler) GetPreview(c echo.Context) error {
	ds, err := h.dataset(c)
	if err != nil {
		return err
	}
	limit, offset := getPaginationParams(c, previewRows)
	return c.JSON(http.StatusOK, models.PreviewPage{
		Columns: ds.Table.Columns(),
		Data:    ds.Table.Rows(offset, limit),
		Total:   ds.Table.NumRows(),
		Limit:   limit,
		Offset:  offset,
	})
}

func (h *Handler) GetProfile(c echo.Context) error {
	ds, err := h.dataset(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.ProfileResponse{Columns: ds.Table.Profile()})
}

// GetChart returns the render pass for ?x=&y= as JSON.
func (h *Handler) GetChart(c echo.Context) error {
	ds, err := h.dataset(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.page(ds, requestFrom(c)))
}

// GetChartPNG renders the same pass as a static image, or explains why there
// is none.
func (h *Handler) GetChartPNG(c echo.Context) error {
	ds, err := h.dataset(c)
	if err != nil {
		return err
	}
	v := h.page(ds, requestFrom(c))
	if v.State != dashboard.StateChartShown {
		return c.JSON(http.StatusUnprocessableEntity, v)
	}

	var buf bytes.Buffer
	if err := dashboard.RenderPNG(&buf, v); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// Reload drops the cached dataset and starts loading it again in the
// background.
func (h *Handler) Reload(c echo.Context) error {
	h.cache.Invalidate()
	level.Info(h.logger).Log("msg", "dataset cache invalidated")

	go func() {
		if _, err := h.cache.Get(context.Background()); err != nil {
			level.Error(h.logger).Log("msg", "dataset reload failed", "err", err)
		}
	}()
	return c.JSON(http.StatusAccepted, models.ReloadResponse{Invalidated: true})
}
