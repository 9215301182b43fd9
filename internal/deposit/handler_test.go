package deposit

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moonforge/worker-bot/internal/domain"
	"github.com/moonforge/worker-bot/internal/repository"
)

const testSecret = "hook-secret"

func newWebhook(t *testing.T) (*Handler, *depositFixture) {
	t.Helper()

	f := newDepositFixture(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(f.service, testSecret, log), f
}

func postDeposit(h *Handler, secret, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/deposit", strings.NewReader(body))
	if secret != "" {
		req.Header.Set("X-Webhook-Secret", secret)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const validBody = `{
	"tx_signature": "5KtP9signature",
	"subdomain": "alpha",
	"amount_sol": "2.5",
	"sender_address": "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
}`

func TestWebhookRejectsBadSecret(t *testing.T) {
	h, f := newWebhook(t)

	rec := postDeposit(h, "wrong", validBody)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	f.domains.AssertNotCalled(t, "FindActiveBySubdomain", mock.Anything, mock.Anything)
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	h, _ := newWebhook(t)

	rec := postDeposit(h, testSecret, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookAcceptsDeposit(t *testing.T) {
	h, f := newWebhook(t)

	claimed := &domain.WorkerDomain{ID: 9, WorkerID: 55, Subdomain: "alpha", IsActive: true}
	owner := &domain.Worker{ID: 55, TelegramID: 100}

	f.domains.On("FindActiveBySubdomain", mock.Anything, "alpha").Return(claimed, nil).Once()
	f.workers.On("FindByID", mock.Anything, int64(55)).Return(owner, nil).Once()
	f.profits.On("Record", mock.Anything, mock.Anything).Return(nil).Once()
	f.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	rec := postDeposit(h, testSecret, validBody)
	require.Equal(t, http.StatusOK, rec.Code)
	f.profits.AssertExpectations(t)
}

func TestWebhookDuplicateDeliveryIsOK(t *testing.T) {
	h, f := newWebhook(t)

	claimed := &domain.WorkerDomain{ID: 9, WorkerID: 55, Subdomain: "alpha", IsActive: true}
	owner := &domain.Worker{ID: 55, TelegramID: 100}

	f.domains.On("FindActiveBySubdomain", mock.Anything, "alpha").Return(claimed, nil).Once()
	f.workers.On("FindByID", mock.Anything, int64(55)).Return(owner, nil).Once()
	f.profits.On("Record", mock.Anything, mock.Anything).Return(repository.ErrDuplicateTransaction).Once()

	rec := postDeposit(h, testSecret, validBody)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookUnknownSubdomainIsUnprocessable(t *testing.T) {
	h, f := newWebhook(t)

	f.domains.On("FindActiveBySubdomain", mock.Anything, "alpha").
		Return(nil, repository.ErrDomainNotFound).Once()

	rec := postDeposit(h, testSecret, validBody)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
