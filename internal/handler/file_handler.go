package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
	"github.com/noah-isme/ecde-votmis-api/pkg/response"
)

type tokenParser interface {
	Parse(token string) (owner, objectPath string, expiresAt time.Time, err error)
}

// fileOpener opens stored objects; *storage.LocalStorage satisfies it.
type fileOpener interface {
	Open(objectPath string) (*os.File, error)
}

// FileHandler serves stored photos and documents behind signed tokens.
type FileHandler struct {
	signer tokenParser
	files  fileOpener
}

// NewFileHandler constructs FileHandler.
func NewFileHandler(signer tokenParser, files fileOpener) *FileHandler {
	return &FileHandler{signer: signer, files: files}
}

// Download godoc
// @Summary Download a stored file through a signed token
// @Tags Files
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /files/{token} [get]
func (h *FileHandler) Download(c *gin.Context) {
	_, objectPath, _, err := h.signer.Parse(c.Param("token"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired link"))
		return
	}
	file, err := h.files.Open(objectPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer file.Close()

	var modTime time.Time
	if info, err := file.Stat(); err == nil {
		modTime = info.ModTime()
	}
	c.Header("Cache-Control", "private, max-age=300")
	http.ServeContent(c.Writer, c.Request, path.Base(objectPath), modTime, io.ReadSeeker(file))
}
