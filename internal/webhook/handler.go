package webhook

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopbot/internal/domain"
)

// PaymentProcessor — обратный вызов ядра для подтверждения оплаты.
type PaymentProcessor interface {
	OnPaymentCallback(orderID int64, paid bool) error
}

// PaymentCallback — тело запроса платёжного коллаборатора. Подлинность
// запроса проверяет сам коллаборатор; ядро ему доверяет.
type PaymentCallback struct {
	OrderID int64 `json:"order"`
	Paid    bool  `json:"paid"`
}

// Handler принимает HTTP-коллбеки платёжного провайдера.
type Handler struct {
	processor PaymentProcessor
	logger    *log.Entry
}

// NewHandler конструирует обработчик платёжных коллбеков.
func NewHandler(processor PaymentProcessor, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "payment-webhook")
	}
	return &Handler{processor: processor, logger: logger}
}

// ServeHTTP обрабатывает POST с JSON-телом {"order": <id>, "paid": <bool>}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var callback PaymentCallback
	if err := json.NewDecoder(r.Body).Decode(&callback); err != nil {
		h.logger.WithError(err).Warn("некорректное тело платёжного коллбека")
		http.Error(w, `{"ok": false, "error": "bad request"}`, http.StatusBadRequest)
		return
	}

	if err := h.processor.OnPaymentCallback(callback.OrderID, callback.Paid); err != nil {
		if domain.IsNotFound(err) {
			http.Error(w, `{"ok": false, "error": "order not found"}`, http.StatusNotFound)
			return
		}
		h.logger.WithError(err).WithField("order_id", callback.OrderID).Error("сбой обработки платёжного коллбека")
		http.Error(w, `{"ok": false, "error": "internal error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
