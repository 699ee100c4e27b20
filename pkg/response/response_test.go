package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestJSONWithMeta(t *testing.T) {
	c, w := newContext()
	JSON(c, http.StatusOK, []string{"BT001"}, nil, map[string]interface{}{"count": 1})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"data":["BT001"],"meta":{"count":1}}`, w.Body.String())
}

func TestErrorUsesTypedStatus(t *testing.T) {
	c, w := newContext()
	Error(c, appErrors.Clone(appErrors.ErrExhausted, "no identifiers left for BT"))

	require.Equal(t, http.StatusConflict, w.Code)
	var body struct {
		Error appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "IDENTIFIER_EXHAUSTED", body.Error.Code)
	assert.Empty(t, c.Errors)
}

func TestErrorRecordsInternalCause(t *testing.T) {
	c, w := newContext()
	Error(c, errors.New("connection reset"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, c.Errors, 1)
	assert.Contains(t, c.Errors.String(), "connection reset")
}

func TestAttachment(t *testing.T) {
	c, w := newContext()
	Attachment(c, "upi-register.pdf", "application/pdf", []byte("%PDF-1.3"))

	assert.Equal(t, `attachment; filename="upi-register.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.3", w.Body.String())
}
