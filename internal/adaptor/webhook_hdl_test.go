package adaptor

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"booking-payments/internal/data/entity"
	"booking-payments/internal/gateway"
	"booking-payments/internal/lifecycle"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubWebhookService struct {
	err     error
	kind    entity.BookingKind
	payload []byte
	sig     string
	calls   int
}

func (s *stubWebhookService) ProcessEvent(_ context.Context, kind entity.BookingKind, payload []byte, sigHeader string) error {
	s.calls++
	s.kind = kind
	s.payload = payload
	s.sig = sigHeader
	return s.err
}

func postWebhook(t *testing.T, svc *stubWebhookService, kind string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	router.Post("/api/{kind}/webhook", NewWebhookHandler(svc, zap.NewNop()).HandleEvent)

	req := httptest.NewRequest(http.MethodPost, "/api/"+kind+"/webhook", bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWebhookHandlerStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"handled", nil, http.StatusOK},
		{"bad signature", gateway.ErrSignatureInvalid, http.StatusBadRequest},
		{"malformed payload", gateway.ErrMalformedEvent, http.StatusBadRequest},
		{"state conflict", &lifecycle.InvalidTransitionError{
			Status:  entity.BookingStatusFailed,
			Trigger: lifecycle.TriggerPaymentSucceeded,
			Detail:  "terminal state",
		}, http.StatusConflict},
		{"transient failure", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubWebhookService{err: tt.err}
			rec := postWebhook(t, svc, "event", []byte(`{}`), nil)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, 1, svc.calls)
		})
	}
}

func TestWebhookHandlerPassesRawBodyAndSignature(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	svc := &stubWebhookService{}

	rec := postWebhook(t, svc, "venue", body, map[string]string{
		"Stripe-Signature": "t=1,v1=abc",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.BookingKindVenue, svc.kind)
	assert.Equal(t, body, svc.payload, "payload must reach the service byte for byte")
	assert.Equal(t, "t=1,v1=abc", svc.sig)
}

func TestWebhookHandlerFallsBackToGenericSignatureHeader(t *testing.T) {
	svc := &stubWebhookService{}
	rec := postWebhook(t, svc, "service", []byte(`{}`), map[string]string{
		"X-Signature": "t=2,v1=def",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t=2,v1=def", svc.sig)
}

func TestWebhookHandlerRejectsUnknownKind(t *testing.T) {
	svc := &stubWebhookService{}
	rec := postWebhook(t, svc, "spaceship", []byte(`{}`), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, svc.calls)
}
