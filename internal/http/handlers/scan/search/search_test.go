package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/digitalguardian/breachwatch/internal/http/middlewarectx"
	"github.com/digitalguardian/breachwatch/internal/models"
	"github.com/digitalguardian/breachwatch/internal/services/scan"
)

type ScanServiceMock struct {
	mock.Mock
}

func (m *ScanServiceMock) Search(ctx context.Context, userUID, userEmail, searchEmail string) (*models.ScanReport, error) {
	args := m.Called(ctx, userUID, userEmail, searchEmail)
	report, _ := args.Get(0).(*models.ScanReport)
	return report, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSearchHandler_ServeHTTP(t *testing.T) {
	scanMock := new(ScanServiceMock)
	logger := newNoopLogger()

	handler := New(logger, scanMock)

	tests := []struct {
		name           string
		authenticated  bool
		requestBody    interface{}
		mockReport     *models.ScanReport
		mockErr        error
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:          "valid search",
			authenticated: true,
			requestBody:   Request{Email: "target@example.com"},
			mockReport: &models.ScanReport{
				Exposures: []models.Exposure{{BreachName: "MegaLeak", Severity: "high"}},
				Count:     1,
				Scanned:   "target@example.com",
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "unauthenticated request",
			authenticated:  false,
			requestBody:    Request{Email: "target@example.com"},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
			wantStatus:     "Error",
		},
		{
			name:           "invalid json body",
			authenticated:  true,
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - missing email",
			authenticated:  true,
			requestBody:    Request{},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Email is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "premium required",
			authenticated:  true,
			requestBody:    Request{Email: "target@example.com"},
			mockErr:        scan.ErrEntitlementRequired,
			wantStatusCode: http.StatusForbidden,
			wantError:      "premium subscription required",
			wantStatus:     "Error",
		},
		{
			name:           "invalid search email",
			authenticated:  true,
			requestBody:    Request{Email: "target@example.com"},
			mockErr:        scan.ErrInvalidEmail,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "valid email required",
			wantStatus:     "Error",
		},
		{
			name:           "provider failure",
			authenticated:  true,
			requestBody:    Request{Email: "target@example.com"},
			mockErr:        scan.ErrScanFailed,
			wantStatusCode: http.StatusBadGateway,
			wantError:      "search failed, try again later",
			wantStatus:     "Error",
		},
		{
			name:           "storage failure",
			authenticated:  true,
			requestBody:    Request{Email: "target@example.com"},
			mockErr:        errors.New("connection refused"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "internal error",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanMock.ExpectedCalls = nil
			scanMock.Calls = nil

			if tt.mockReport != nil || tt.mockErr != nil {
				scanMock.On("Search", mock.Anything, "uid-1", "user@example.com", tt.requestBody.(Request).Email).
					Return(tt.mockReport, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/scan/search", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.authenticated {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, "uid-1")
				ctx = context.WithValue(ctx, middlewarectx.Email, "user@example.com")
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			}

			if tt.mockReport != nil {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, float64(1), data["count"])
				assert.Equal(t, "target@example.com", data["scanned"])
			}

			if tt.mockReport != nil || tt.mockErr != nil {
				scanMock.AssertExpectations(t)
			}
		})
	}
}
