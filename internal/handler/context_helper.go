package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ecde-votmis-api/internal/dto"
	"github.com/noah-isme/ecde-votmis-api/internal/middleware"
	"github.com/noah-isme/ecde-votmis-api/internal/models"
	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
	"github.com/noah-isme/ecde-votmis-api/pkg/response"
)

// actorFromContext returns the authenticated actor or writes a 401 and returns nil.
func actorFromContext(c *gin.Context) *models.Actor {
	actor := middleware.ActorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil
	}
	return actor
}

func pathInt64(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name))
		return 0, false
	}
	return id, true
}

func pathProgram(c *gin.Context) (models.Program, bool) {
	program, ok := models.ParseProgram(c.Param("program"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "program must be ecde or vocational"))
		return "", false
	}
	return program, true
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// formFile opens the named multipart file. The caller closes the returned reader.
func formFile(c *gin.Context, field string) (*dto.PhotoUpload, multipart.File, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, field+" file is required"))
		return nil, nil, false
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read "+field))
		return nil, nil, false
	}
	upload := &dto.PhotoUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
	return upload, file, true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
