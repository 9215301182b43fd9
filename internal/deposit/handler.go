package deposit

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"
)

// Handler exposes the deposit webhook consumed by the payment watcher.
type Handler struct {
	service *Service
	secret  string
	log     *slog.Logger
}

// NewHandler builds the webhook handler. An empty secret disables the
// endpoint entirely rather than leaving it open.
func NewHandler(service *Service, secret string, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}

	return &Handler{service: service, secret: secret, log: log}
}

type webhookPayload struct {
	TxSignature   string          `json:"tx_signature"`
	Subdomain     string          `json:"subdomain"`
	AmountSOL     decimal.Decimal `json:"amount_sol"`
	SenderAddress string          `json:"sender_address"`
}

// ServeHTTP handles POST /webhooks/deposit. Duplicate deliveries return 200
// so the watcher stops retrying; attribution failures return 422 because a
// retry cannot fix them.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	if payload.TxSignature == "" || payload.Subdomain == "" {
		http.Error(w, "tx_signature and subdomain are required", http.StatusBadRequest)
		return
	}

	_, err := h.service.Process(r.Context(), Notification{
		TxSignature:   payload.TxSignature,
		Subdomain:     payload.Subdomain,
		AmountSOL:     payload.AmountSOL,
		SenderAddress: payload.SenderAddress,
	})

	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, ErrDuplicateDeposit):
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, ErrInvalidAmount):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrUnknownSubdomain):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.log.Error("deposit processing failed",
			slog.String("tx_signature", payload.TxSignature),
			slog.Any("error", err),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.secret == "" {
		return false
	}

	provided := r.Header.Get("X-Webhook-Secret")
	return subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) == 1
}
