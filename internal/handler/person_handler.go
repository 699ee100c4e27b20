package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ecde-votmis-api/internal/dto"
	"github.com/noah-isme/ecde-votmis-api/internal/models"
	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
	"github.com/noah-isme/ecde-votmis-api/pkg/response"
)

const maxAgeBound = 150

type personService interface {
	Register(ctx context.Context, actor *models.Actor, req dto.RegisterPersonRequest, photo *dto.PhotoUpload, photoData io.Reader) (*models.Person, error)
	Get(ctx context.Context, actor *models.Actor, program models.Program, id int64) (*models.Person, error)
	FindByUPI(ctx context.Context, actor *models.Actor, upi string) (*models.Person, error)
	Update(ctx context.Context, actor *models.Actor, program models.Program, id int64, req dto.UpdatePersonRequest) (*models.Person, error)
	UploadPhoto(ctx context.Context, actor *models.Actor, program models.Program, id int64, upload dto.PhotoUpload, data io.Reader) (*models.Person, error)
}

type directoryService interface {
	List(ctx context.Context, institutionID int64, filter models.DirectoryFilter) ([]models.PersonView, error)
}

// PersonHandler exposes learner and student endpoints.
type PersonHandler struct {
	persons   personService
	directory directoryService
}

// NewPersonHandler constructs PersonHandler.
func NewPersonHandler(persons personService, directory directoryService) *PersonHandler {
	return &PersonHandler{persons: persons, directory: directory}
}

// Register godoc
// @Summary Register an ECDE learner or vocational student
// @Description Accepts JSON, or multipart/form-data with a JSON "payload" field and an optional "photo" file.
// @Tags Persons
// @Accept json
// @Accept mpfd
// @Produce json
// @Param payload body dto.RegisterPersonRequest true "Person payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /persons [post]
func (h *PersonHandler) Register(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}

	var req dto.RegisterPersonRequest
	var photo *dto.PhotoUpload
	var photoData io.Reader
	if isMultipart(c) {
		if err := json.Unmarshal([]byte(c.PostForm("payload")), &req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
		if _, err := c.FormFile("photo"); err == nil {
			upload, file, ok := formFile(c, "photo")
			if !ok {
				return
			}
			defer closeQuietly(file)
			photo, photoData = upload, file
		}
	} else if !bindJSON(c, &req) {
		return
	}
	req.Program = models.Program(strings.ToLower(strings.TrimSpace(string(req.Program))))

	person, err := h.persons.Register(c.Request.Context(), actor, req, photo, photoData)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, person)
}

// List godoc
// @Summary Search the learner directory
// @Tags Persons
// @Produce json
// @Param search query string false "Name, UPI or course substring"
// @Param programType query string false "ecde or vocational"
// @Param gender query string false "male or female"
// @Param status query string false "Lifecycle status"
// @Param admissionYear query int false "Admission year"
// @Param minAge query int false "Minimum age"
// @Param maxAge query int false "Maximum age"
// @Param sort query string false "recent"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /persons [get]
func (h *PersonHandler) List(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}
	institutionID, ok := actor.Institution()
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "no institution assigned"))
		return
	}
	var query dto.DirectoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	filter, err := directoryFilterFromQuery(query)
	if err != nil {
		response.Error(c, err)
		return
	}

	views, err := h.directory.List(c.Request.Context(), institutionID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil, map[string]interface{}{"count": len(views)})
}

// Get godoc
// @Summary Get a person
// @Tags Persons
// @Produce json
// @Param program path string true "ecde or vocational"
// @Param id path int true "Person ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /persons/{program}/{id} [get]
func (h *PersonHandler) Get(c *gin.Context) {
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
	person, err := h.persons.Get(c.Request.Context(), actor, program, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, person, nil)
}

// FindByUPI godoc
// @Summary Look a person up by UPI within the caller's institution
// @Tags Persons
// @Produce json
// @Param upi path string true "Unique personal identifier"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /upi/{upi} [get]
func (h *PersonHandler) FindByUPI(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil {
		return
	}
	upi := strings.TrimSpace(c.Param("upi"))
	if upi == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "upi is required"))
		return
	}
	person, err := h.persons.FindByUPI(c.Request.Context(), actor, upi)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, person, nil)
}

// Update godoc
// @Summary Update a person's bio data
// @Tags Persons
// @Accept json
// @Produce json
// @Param program path string true "ecde or vocational"
// @Param id path int true "Person ID"
// @Param payload body dto.UpdatePersonRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /persons/{program}/{id} [patch]
func (h *PersonHandler) Update(c *gin.Context) {
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
	var req dto.UpdatePersonRequest
	if !bindJSON(c, &req) {
		return
	}
	person, err := h.persons.Update(c.Request.Context(), actor, program, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, person, nil)
}

// UploadPhoto godoc
// @Summary Upload a passport photo
// @Tags Persons
// @Accept mpfd
// @Produce json
// @Param program path string true "ecde or vocational"
// @Param id path int true "Person ID"
// @Param photo formData file true "Photo"
// @Success 200 {object} response.Envelope
// @Router /persons/{program}/{id}/photo [post]
func (h *PersonHandler) UploadPhoto(c *gin.Context) {
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
	upload, file, ok := formFile(c, "photo")
	if !ok {
		return
	}
	defer closeQuietly(file)

	person, err := h.persons.UploadPhoto(c.Request.Context(), actor, program, id, *upload, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, person, nil)
}

func directoryFilterFromQuery(q dto.DirectoryQuery) (models.DirectoryFilter, error) {
	filter := models.DirectoryFilter{
		SearchTerm: strings.TrimSpace(q.Search),
		Gender:     models.FilterValue(q.Gender),
		Status:     models.PersonStatus(models.FilterValue(q.Status)),
	}
	if raw := models.FilterValue(q.ProgramType); raw != "" {
		program, ok := models.ParseProgram(raw)
		if !ok {
			return filter, appErrors.Clone(appErrors.ErrValidation, "programType must be ecde or vocational")
		}
		filter.ProgramType = program
	}
	if raw := models.FilterValue(q.AdmissionYear); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "admissionYear must be a number")
		}
		filter.AdmissionYear = &year
	}
	minAge, hasMin, err := optionalInt(q.MinAge, "minAge")
	if err != nil {
		return filter, err
	}
	maxAge, hasMax, err := optionalInt(q.MaxAge, "maxAge")
	if err != nil {
		return filter, err
	}
	if hasMin || hasMax {
		if !hasMax {
			maxAge = maxAgeBound
		}
		if minAge > maxAge {
			return filter, appErrors.Clone(appErrors.ErrValidation, "minAge cannot exceed maxAge")
		}
		filter.AgeRange = &models.AgeRange{Min: minAge, Max: maxAge}
	}
	switch sort := models.DirectorySort(strings.ToLower(strings.TrimSpace(q.Sort))); sort {
	case models.DirectorySortDefault, models.DirectorySortRecent:
		filter.Sort = sort
	default:
		return filter, appErrors.Clone(appErrors.ErrValidation, "sort must be recent")
	}
	limit, hasLimit, err := optionalInt(q.Limit, "limit")
	if err != nil {
		return filter, err
	}
	if hasLimit {
		if limit < 0 {
			return filter, appErrors.Clone(appErrors.ErrValidation, "limit cannot be negative")
		}
		filter.Limit = limit
	}
	return filter, nil
}

func optionalInt(raw, name string) (int, bool, error) {
	raw = models.FilterValue(raw)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, appErrors.Clone(appErrors.ErrValidation, name+" must be a number")
	}
	return v, true, nil
}
