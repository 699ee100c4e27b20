package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ecde-votmis-api/internal/dto"
	"github.com/noah-isme/ecde-votmis-api/internal/models"
	"github.com/noah-isme/ecde-votmis-api/pkg/response"
)

type recordService[T models.OwnedRecord] interface {
	List(ctx context.Context, actor *models.Actor) ([]T, error)
	Create(ctx context.Context, actor *models.Actor, record T) (T, error)
	Update(ctx context.Context, actor *models.Actor, id int64, record T) (T, error)
	AttachDocument(ctx context.Context, actor *models.Actor, id int64, upload dto.PhotoUpload, data io.Reader) (T, error)
}

// RecordHandler exposes CRUD endpoints for one kind of institution record.
// New allocates an empty record to bind request bodies into.
type RecordHandler[T models.OwnedRecord] struct {
	records recordService[T]
	newFn   func() T
}

// NewRecordHandler constructs RecordHandler.
func NewRecordHandler[T models.OwnedRecord](records recordService[T], newFn func() T) *RecordHandler[T] {
	return &RecordHandler[T]{records: records, newFn: newFn}
}

// Register mounts the handler under group.
func (h *RecordHandler[T]) Register(group *gin.RouterGroup, withDocuments bool) {
	group.GET("", h.List)
	group.POST("", h.Create)
	group.PUT("/:id", h.Update)
	if withDocuments {
		group.POST("/:id/document", h.AttachDocument)
	}
}

// List godoc
// @Summary List institution records (bank-accounts, books, infrastructure, emergencies, capitation)
// @Tags Records
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /records/{kind} [get]
func (h *RecordHandler[T]) List(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}
	records, err := h.records.List(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Create godoc
// @Summary Create an institution record
// @Tags Records
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /records/{kind} [post]
func (h *RecordHandler[T]) Create(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}
	record := h.newFn()
	if !bindJSON(c, record) {
		return
	}
	created, err := h.records.Create(c.Request.Context(), actor, record)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Update godoc
// @Summary Replace an institution record
// @Tags Records
// @Accept json
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /records/{kind}/{id} [put]
func (h *RecordHandler[T]) Update(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	record := h.newFn()
	if !bindJSON(c, record) {
		return
	}
	updated, err := h.records.Update(c.Request.Context(), actor, id, record)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// AttachDocument godoc
// @Summary Upload a supporting document
// @Tags Records
// @Accept mpfd
// @Produce json
// @Param id path int true "Record ID"
// @Param file formData file true "Document"
// @Success 200 {object} response.Envelope
// @Router /records/{kind}/{id}/document [post]
func (h *RecordHandler[T]) AttachDocument(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	upload, file, ok := formFile(c, "file")
	if !ok {
		return
	}
	defer closeQuietly(file)
	record, err := h.records.AttachDocument(c.Request.Context(), actor, id, *upload, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}
