package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appErr "github.com/samims/notifier/internal/errors"
	"github.com/samims/notifier/internal/model"
	"github.com/samims/notifier/internal/service"
)

type mockNotificationService struct {
	mock.Mock
}

func (m *mockNotificationService) Create(ctx context.Context, req model.CreateRequest) (*model.CreateResponse, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*model.CreateResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotificationService) Get(ctx context.Context, id string) (*model.Notification, error) {
	args := m.Called(ctx, id)
	if n, ok := args.Get(0).(*model.Notification); ok {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

type stubHealth struct {
	readyErr error
}

func (s stubHealth) Liveness(context.Context) error  { return nil }
func (s stubHealth) Readiness(context.Context) error { return s.readyErr }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(svc service.NotificationService, health service.HealthService) http.Handler {
	nh := NewNotificationHandler(svc, discardLogger())
	oh := NewOptimizerHandler(service.NewContentOptimizer(rand.New(rand.NewSource(1)), discardLogger()), discardLogger())
	hh := NewHealthHandler(health, discardLogger())

	r := chi.NewRouter()
	r.Post("/notifications", nh.Create)
	r.Get("/notifications/{id}", nh.GetByID)
	r.Post("/ai/optimize", oh.Optimize)
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)
	return r
}

func TestNotificationHandler_Create(t *testing.T) {
	valid := model.CreateRequest{
		Recipient: "user@example.com",
		Subject:   "Welcome",
		Body:      "Hello",
		Channel:   model.ChannelEmail,
	}

	tests := []struct {
		name       string
		body       string
		setup      func(m *mockNotificationService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "created",
			body: `{"recipient":"user@example.com","subject":"Welcome","body":"Hello","channel":"EMAIL"}`,
			setup: func(m *mockNotificationService) {
				m.On("Create", mock.Anything, valid).Return(&model.CreateResponse{
					ID:      "n1",
					Status:  model.StatusPending,
					Message: "Notification created successfully",
				}, nil)
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"id":"n1"`,
		},
		{
			name:       "malformed json",
			body:       `{"recipient":`,
			setup:      func(*mockNotificationService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "invalid payload",
		},
		{
			name: "validation error",
			body: `{"recipient":"user@example.com","subject":"Welcome","body":"Hello","channel":"FAX"}`,
			setup: func(m *mockNotificationService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, appErr.NewValidation("channel must be EMAIL, SMS, or PUSH"))
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "channel must be",
		},
		{
			name: "store failure",
			body: `{"recipient":"user@example.com","subject":"Welcome","body":"Hello","channel":"EMAIL"}`,
			setup: func(m *mockNotificationService) {
				m.On("Create", mock.Anything, valid).Return(nil, appErr.NewInternal("failed to create notification: disk full"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "failed to create notification",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockNotificationService{}
			tt.setup(svc)

			req := httptest.NewRequest(http.MethodPost, "/notifications", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			newTestRouter(svc, stubHealth{}).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			svc.AssertExpectations(t)
		})
	}
}

func TestNotificationHandler_GetByID(t *testing.T) {
	svc := &mockNotificationService{}
	svc.On("Get", mock.Anything, "n1").Return(&model.Notification{
		ID:         "n1",
		Channel:    model.ChannelPush,
		Status:     model.StatusRetry,
		RetryCount: 1,
	}, nil)
	svc.On("Get", mock.Anything, "missing").Return(nil, appErr.NewNotFound("notification missing"))
	svc.On("Get", mock.Anything, "broken").Return(nil, errors.New("connection refused"))

	router := newTestRouter(svc, stubHealth{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/n1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, model.StatusRetry, got.Status)
	assert.Equal(t, 1, got.RetryCount)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/broken", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestOptimizerHandler_Optimize(t *testing.T) {
	router := newTestRouter(&mockNotificationService{}, stubHealth{})

	body := `{"subject":"Sale ends tonight","message":"Everything is half price until midnight.","channel":"SMS"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ai/optimize", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.OptimizationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Sale ends tonight", resp.OriginalSubject)
	assert.Contains(t, resp.OptimizedSubject, "Sale ends tonight")
	assert.GreaterOrEqual(t, resp.ConfidenceScore, 0.75)
	assert.LessOrEqual(t, resp.ConfidenceScore, 0.99)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ai/optimize", bytes.NewBufferString(`{"message":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		health     stubHealth
		wantStatus int
	}{
		{"liveness", "/healthz", stubHealth{}, http.StatusOK},
		{"ready", "/readyz", stubHealth{}, http.StatusOK},
		{"not ready", "/readyz", stubHealth{readyErr: errors.New("ping timeout")}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestRouter(&mockNotificationService{}, tt.health).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
