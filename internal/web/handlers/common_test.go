package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/photo-memories/internal/database"
	"github.com/kozaktomas/photo-memories/internal/importer"
	"github.com/kozaktomas/photo-memories/internal/photos"
	"github.com/kozaktomas/photo-memories/internal/review"
)

func TestRespondJSON_SetsContentType(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondJSON(recorder, http.StatusOK, map[string]string{"status": "ok"})

	assertContentType(t, recorder, "application/json")
}

func TestRespondJSON_SetsStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"OK", http.StatusOK},
		{"Accepted", http.StatusAccepted},
		{"BadRequest", http.StatusBadRequest},
		{"NotFound", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondJSON(recorder, tc.statusCode, nil)

			assertStatusCode(t, recorder, tc.statusCode)
			if recorder.Body.Len() != 0 {
				t.Errorf("expected empty body for nil data, got %q", recorder.Body.String())
			}
		})
	}
}

func TestRespondJSON_EncodesData(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondJSON(recorder, http.StatusOK, map[string]any{"message": "hello", "count": 42})

	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if result["message"] != "hello" || result["count"] != float64(42) {
		t.Errorf("unexpected body %v", result)
	}
}

func TestRespondError(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondError(recorder, http.StatusBadRequest, "bad input")

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "bad input")
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{fmt.Errorf("draft x: %w", database.ErrNotFound), http.StatusNotFound, "draft x: not found"},
		{review.ErrNoAssetsSelected, http.StatusBadRequest, "no assets selected"},
		{review.ErrTooManyAssets, http.StatusBadRequest, "at most 20 assets can be selected"},
		{fmt.Errorf("%w: zzz", review.ErrUnknownAsset), http.StatusBadRequest, "asset is not part of the draft: zzz"},
		{importer.ErrScanInProgress, http.StatusConflict, "scan already in progress"},
		{photos.ErrPermissionDenied, http.StatusForbidden, "photo library access denied"},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondServiceError(recorder, tt.err)

			assertStatusCode(t, recorder, tt.status)
			assertJSONError(t, recorder, tt.message)
		})
	}
}

func TestSanitizeForLog(t *testing.T) {
	if got := sanitizeForLog("abc\r\ndef\n"); got != "abcdef" {
		t.Errorf("expected newlines removed, got %q", got)
	}
}

func TestHealthCheck(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodHead} {
		t.Run(method, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			HealthCheck(recorder, httptest.NewRequest(method, "/api/v1/health", nil))

			assertStatusCode(t, recorder, http.StatusOK)
			var result map[string]string
			parseJSONResponse(t, recorder, &result)
			if result["status"] != "ok" {
				t.Errorf("expected status 'ok', got '%s'", result["status"])
			}
		})
	}
}
