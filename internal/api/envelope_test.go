package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jwwelbor/shark-orchestrator/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestWriteErr_ClassifiesStructuredErrorTypes(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", models.NewValidationError("title", "cannot be empty"), http.StatusBadRequest, "validation_error"},
		{"not_found", models.NewNotFoundError("task", "t1"), http.StatusNotFound, "not_found"},
		{"conflict", models.NewVersionConflictError("project", "p1", 2, 1), http.StatusConflict, "conflict"},
		{"database", models.NewDatabaseError("insert", errors.New("disk full")), http.StatusInternalServerError, "database_error"},
		{"config", models.NewConfigError("workflow.yaml", errors.New("bad yaml")), http.StatusInternalServerError, "config_error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeErr(rr, tc.err)
			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.wantCode)
		})
	}
}

func TestWriteOK_WritesSuccessEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	writeOK(rr, map[string]string{"id": "abc"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success":true`)
	assert.Contains(t, rr.Body.String(), `"abc"`)
}

func TestWriteOKMeta_IncludesMetadata(t *testing.T) {
	rr := httptest.NewRecorder()
	writeOKMeta(rr, []string{"t1"}, map[string]string{"mode": "sequential"})
	assert.Contains(t, rr.Body.String(), `"mode":"sequential"`)
}

func TestDecodeBody_RejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/whatever", strings.NewReader(`{"action":"create","bogus":true}`))
	var dst struct {
		Action string `json:"action"`
	}
	err := decodeBody(req, &dst)
	assert.Error(t, err)
}

func TestDecodeBody_AcceptsKnownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/whatever", strings.NewReader(`{"action":"create"}`))
	var dst struct {
		Action string `json:"action"`
	}
	err := decodeBody(req, &dst)
	assert.NoError(t, err)
	assert.Equal(t, "create", dst.Action)
}
