package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ecde-votmis-api/internal/dto"
	"github.com/noah-isme/ecde-votmis-api/internal/models"
	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
	"github.com/noah-isme/ecde-votmis-api/pkg/response"
)

type lifecycleService interface {
	Release(ctx context.Context, actor *models.Actor, program models.Program, id int64, req dto.ReleasePersonRequest) (*models.TransferRecord, error)
	Receive(ctx context.Context, actor *models.Actor, req dto.ReceivePersonRequest) (*models.Person, error)
	MarkDeceased(ctx context.Context, actor *models.Actor, program models.Program, id int64, req dto.RecordDeathRequest) (*models.Person, error)
	Transfers(ctx context.Context, actor *models.Actor, direction models.TransferDirection, status models.TransferStatus) ([]models.TransferRecord, error)
}

// LifecycleHandler exposes release, receive and death endpoints.
type LifecycleHandler struct {
	lifecycle lifecycleService
}

// NewLifecycleHandler constructs LifecycleHandler.
func NewLifecycleHandler(lifecycle lifecycleService) *LifecycleHandler {
	return &LifecycleHandler{lifecycle: lifecycle}
}

// Release godoc
// @Summary Release a person to another institution
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param program path string true "ecde or vocational"
// @Param id path int true "Person ID"
// @Param payload body dto.ReleasePersonRequest true "Release details"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /persons/{program}/{id}/release [post]
func (h *LifecycleHandler) Release(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}
	program, ok := pathProgram(c)
	if !ok {
		return
	}
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	var req dto.ReleasePersonRequest
	if !bindJSON(c, &req) {
		return
	}
	transfer, err := h.lifecycle.Release(c.Request.Context(), actor, program, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, transfer)
}

// Receive godoc
// @Summary Receive a released person by UPI
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param payload body dto.ReceivePersonRequest true "UPI to receive"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /transfers/receive [post]
func (h *LifecycleHandler) Receive(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}
	var req dto.ReceivePersonRequest
	if !bindJSON(c, &req) {
		return
	}
	person, err := h.lifecycle.Receive(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, person, nil)
}

// MarkDeceased godoc
// @Summary Record the death of a person
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param program path string true "ecde or vocational"
// @Param id path int true "Person ID"
// @Param payload body dto.RecordDeathRequest true "Death details"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /persons/{program}/{id}/death [post]
func (h *LifecycleHandler) MarkDeceased(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}
	program, ok := pathProgram(c)
	if !ok {
		return
	}
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	var req dto.RecordDeathRequest
	if !bindJSON(c, &req) {
		return
	}
	person, err := h.lifecycle.MarkDeceased(c.Request.Context(), actor, program, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, person, nil)
}

// Transfers godoc
// @Summary List transfers of the caller's institution
// @Tags Lifecycle
// @Produce json
// @Param direction query string false "outgoing (default) or incoming"
// @Param status query string false "pending or completed"
// @Success 200 {object} response.Envelope
// @Router /transfers [get]
func (h *LifecycleHandler) Transfers(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}
	direction := models.TransferDirection(strings.ToLower(c.DefaultQuery("direction", string(models.TransferDirectionOutgoing))))
	if direction != models.TransferDirectionOutgoing && direction != models.TransferDirectionIncoming {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "direction must be outgoing or incoming"))
		return
	}
	status := models.TransferStatus(strings.ToLower(c.Query("status")))
	if status != "" && status != models.TransferStatusPending && status != models.TransferStatusCompleted {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status must be pending or completed"))
		return
	}
	transfers, err := h.lifecycle.Transfers(c.Request.Context(), actor, direction, status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transfers, nil)
}
