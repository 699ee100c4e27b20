package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ecde-votmis-api/internal/middleware"
	"github.com/noah-isme/ecde-votmis-api/internal/models"
	"github.com/noah-isme/ecde-votmis-api/internal/service"
	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
	"github.com/noah-isme/ecde-votmis-api/pkg/response"
)

type reportService interface {
	Dashboard(ctx context.Context, actor *models.Actor) (*models.DashboardSummary, bool, error)
	AdmissionReport(ctx context.Context, actor *models.Actor) (*models.AdmissionReport, error)
	UPIRegister(ctx context.Context, actor *models.Actor, filter models.UPIRegisterFilter) ([]models.PersonView, error)
	DeceasedRegister(ctx context.Context, actor *models.Actor) ([]models.PersonView, error)
	ExportUPIRegister(ctx context.Context, actor *models.Actor, filter models.UPIRegisterFilter, format models.ReportFormat) (*service.ExportFile, error)
}

// ReportHandler exposes dashboards, registers and exports.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Dashboard godoc
// @Summary Institution dashboard counts
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}
	summary, cacheHit, err := h.reports.Dashboard(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ResponseMeta(c))
}

// Admissions godoc
// @Summary Admission summary of enrolled persons
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/admissions [get]
func (h *ReportHandler) Admissions(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}
	report, err := h.reports.AdmissionReport(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// UPIRegister godoc
// @Summary UPI register including deceased persons
// @Tags Reports
// @Produce json
// @Param search query string false "Name, UPI or course substring"
// @Param programType query string false "ecde or vocational"
// @Param status query string false "Status, deceased included"
// @Success 200 {object} response.Envelope
// @Router /reports/upi-register [get]
func (h *ReportHandler) UPIRegister(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}
	filter, ok := registerFilterFromQuery(c)
	if !ok {
		return
	}
	views, err := h.reports.UPIRegister(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil, map[string]interface{}{"count": len(views)})
}

// ExportUPIRegister godoc
// @Summary Download the UPI register
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param search query string false "Name, UPI or course substring"
// @Param programType query string false "ecde or vocational"
// @Param status query string false "Status, deceased included"
// @Success 200 {file} file
// @Router /reports/upi-register/export [get]
func (h *ReportHandler) ExportUPIRegister(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}
	filter, ok := registerFilterFromQuery(c)
	if !ok {
		return
	}
	format := models.ReportFormat(strings.ToLower(c.DefaultQuery("format", string(models.ReportFormatCSV))))
	file, err := h.reports.ExportUPIRegister(c.Request.Context(), actor, filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Deceased godoc
// @Summary Deceased register
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/deceased [get]
func (h *ReportHandler) Deceased(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}
	views, err := h.reports.DeceasedRegister(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil, map[string]interface{}{"count": len(views)})
}

func registerFilterFromQuery(c *gin.Context) (models.UPIRegisterFilter, bool) {
	filter := models.UPIRegisterFilter{
		SearchTerm: strings.TrimSpace(c.Query("search")),
		Status:     models.PersonStatus(models.FilterValue(c.Query("status"))),
	}
	if raw := models.FilterValue(c.Query("programType")); raw != "" {
		program, ok := models.ParseProgram(raw)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "programType must be ecde or vocational"))
			return filter, false
		}
		filter.ProgramType = program
	}
	return filter, true
}
