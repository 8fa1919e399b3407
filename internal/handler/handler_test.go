package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, method, target string, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	return c, w
}

func TestEnrollmentHandlerListRequiresFilter(t *testing.T) {
	handler := NewEnrollmentHandler(nil)
	c, w := newTestContext(t, http.MethodGet, "/enrollments", "")

	handler.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "student_id or course_id query parameter is required")
}

func TestAttendanceHandlerListRequiresFilter(t *testing.T) {
	handler := NewAttendanceHandler(nil)
	c, w := newTestContext(t, http.MethodGet, "/attendance", "")

	handler.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "enrollment_id or date query parameter is required")
}

func TestAttendanceHandlerListRejectsBadDate(t *testing.T) {
	handler := NewAttendanceHandler(nil)
	c, w := newTestContext(t, http.MethodGet, "/attendance?date=03-02-2026", "")

	handler.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "date must be in YYYY-MM-DD format")
}

func TestStudentHandlerCreateRejectsMalformedJSON(t *testing.T) {
	handler := NewStudentHandler(nil)
	c, w := newTestContext(t, http.MethodPost, "/students", "{not json")

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceHandlerMarkRejectsMalformedJSON(t *testing.T) {
	handler := NewAttendanceHandler(nil)
	c, w := newTestContext(t, http.MethodPost, "/attendance", "{not json")

	handler.Mark(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentHandlerCompleteRequiresGrade(t *testing.T) {
	handler := NewEnrollmentHandler(nil)
	c, w := newTestContext(t, http.MethodPost, "/enrollments/e1/complete", `{}`)
	c.Params = gin.Params{{Key: "id", Value: "e1"}}

	handler.Complete(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
