package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ecde-votmis-api/internal/dto"
	"github.com/noah-isme/ecde-votmis-api/internal/models"
	"github.com/noah-isme/ecde-votmis-api/pkg/response"
)

type institutionService interface {
	List(ctx context.Context, filter models.InstitutionFilter) ([]models.Institution, *models.Pagination, error)
	Get(ctx context.Context, actor *models.Actor, id int64) (*models.Institution, error)
	Create(ctx context.Context, actor *models.Actor, req dto.InstitutionRequest) (*models.Institution, error)
	Update(ctx context.Context, actor *models.Actor, id int64, req dto.InstitutionRequest) (*models.Institution, error)
}

// InstitutionHandler exposes institution bio data endpoints.
type InstitutionHandler struct {
	institutions institutionService
}

// NewInstitutionHandler constructs InstitutionHandler.
func NewInstitutionHandler(institutions institutionService) *InstitutionHandler {
	return &InstitutionHandler{institutions: institutions}
}

// List godoc
// @Summary List institutions
// @Tags Institutions
// @Produce json
// @Param search query string false "Name or code"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /institutions [get]
func (h *InstitutionHandler) List(c *gin.Context) {
	filter := models.InstitutionFilter{Search: strings.TrimSpace(c.Query("search"))}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	institutions, pagination, err := h.institutions.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institutions, pagination)
}

// Get godoc
// @Summary Get institution detail
// @Tags Institutions
// @Produce json
// @Param id path int true "Institution ID"
// @Success 200 {object} response.Envelope
// @Router /institutions/{id} [get]
func (h *InstitutionHandler) Get(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	institution, err := h.institutions.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institution, nil)
}

// Create godoc
// @Summary Register an institution
// @Tags Institutions
// @Accept json
// @Produce json
// @Param payload body dto.InstitutionRequest true "Institution payload"
// @Success 201 {object} response.Envelope
// @Router /institutions [post]
func (h *InstitutionHandler) Create(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}
	var req dto.InstitutionRequest
	if !bindJSON(c, &req) {
		return
	}
	institution, err := h.institutions.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, institution)
}

// Update godoc
// @Summary Update institution bio data
// @Tags Institutions
// @Accept json
// @Produce json
// @Param id path int true "Institution ID"
// @Param payload body dto.InstitutionRequest true "Institution payload"
// @Success 200 {object} response.Envelope
// @Router /institutions/{id} [put]
func (h *InstitutionHandler) Update(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	var req dto.InstitutionRequest
	if !bindJSON(c, &req) {
		return
	}
	institution, err := h.institutions.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institution, nil)
}
