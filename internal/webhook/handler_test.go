package webhook_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shopbot/internal/domain"
	"github.com/vladislavdragonenkov/shopbot/internal/webhook"
)

type stubProcessor struct {
	err     error
	orderID int64
	paid    bool
	calls   int
}

func (s *stubProcessor) OnPaymentCallback(orderID int64, paid bool) error {
	s.calls++
	s.orderID = orderID
	s.paid = paid
	return s.err
}

func doRequest(h http.Handler, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/payment/callback", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_Success(t *testing.T) {
	processor := &stubProcessor{}
	h := webhook.NewHandler(processor, nil)

	rec := doRequest(h, http.MethodPost, `{"order": 7, "paid": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ok": true}`, rec.Body.String())
	require.Equal(t, 1, processor.calls)
	require.Equal(t, int64(7), processor.orderID)
	require.True(t, processor.paid)
}

func TestWebhook_MethodNotAllowed(t *testing.T) {
	processor := &stubProcessor{}
	h := webhook.NewHandler(processor, nil)

	rec := doRequest(h, http.MethodGet, "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Zero(t, processor.calls)
}

func TestWebhook_BadJSON(t *testing.T) {
	processor := &stubProcessor{}
	h := webhook.NewHandler(processor, nil)

	rec := doRequest(h, http.MethodPost, `{"order": `)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, processor.calls)
}

func TestWebhook_OrderNotFound(t *testing.T) {
	processor := &stubProcessor{err: domain.ErrOrderNotFound}
	h := webhook.NewHandler(processor, nil)

	rec := doRequest(h, http.MethodPost, `{"order": 99, "paid": true}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebhook_InternalError(t *testing.T) {
	processor := &stubProcessor{err: errors.New("boom")}
	h := webhook.NewHandler(processor, nil)

	rec := doRequest(h, http.MethodPost, `{"order": 7, "paid": true}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
