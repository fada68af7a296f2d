package handler

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"opsdash/internal/apierror"
	"opsdash/internal/dto"
	"opsdash/internal/infra"
	"opsdash/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

//go:embed templates/dashboard.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/dashboard.html"))

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
	contentTypePNG  = "image/png"
)

// DashboardHandler serves the page, the JSON views and the exports.
type DashboardHandler struct {
	dashboard service.DashboardService
	export    service.ExportService
}

func NewDashboardHandler(dashboard service.DashboardService, export service.ExportService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, export: export}
}

type pageData struct {
	Dashboard        *dto.DashboardResponse
	ShortFingerprint string
}

// Page renders the single-page dashboard.
func (h *DashboardHandler) Page(c *gin.Context) {
	d, err := h.dashboard.Build(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	fp := d.Fingerprint
	if len(fp) > 12 {
		fp = fp[:12]
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, pageData{Dashboard: d, ShortFingerprint: fp}); err != nil {
		_ = c.Error(err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// Dashboard returns all twelve views.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	d, err := h.dashboard.Build(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// View returns one view by name.
func (h *DashboardHandler) View(c *gin.Context) {
	v, err := h.dashboard.View(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// Choropleth applies a toggle selection. An invalid selection is rejected
// with 422 and the client keeps its current map.
func (h *DashboardHandler) Choropleth(c *gin.Context) {
	var req dto.ChoroplethRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.dashboard.Choropleth(c.Request.Context(), req.Current, req.View)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ChartPNG renders one view as an image.
func (h *DashboardHandler) ChartPNG(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.export.ChartPNG(c.Request.Context(), c.Param("name"), &buf); err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, contentTypePNG, buf.Bytes())
}

// Workbook downloads the views as an .xlsx file.
func (h *DashboardHandler) Workbook(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.export.Workbook(c.Request.Context(), &buf); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="dashboard.xlsx"`)
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

// Report downloads the PDF KPI report.
func (h *DashboardHandler) Report(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.export.Report(c.Request.Context(), &buf); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="report.pdf"`)
	c.Data(http.StatusOK, contentTypePDF, buf.Bytes())
}

// fail maps service errors to status codes; anything unknown goes to the
// ErrorHandler middleware as a 500.
func (h *DashboardHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownView):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInvalidSelection):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, service.ErrNoChart), errors.Is(err, infra.ErrEmptyChart):
		log.Debug().Err(err).Str("view", c.Param("name")).Msg("chart not rendered")
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}
