package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/lee-lou2/aws-ses-sender/internal/domain"
	"github.com/lee-lou2/aws-ses-sender/internal/pkg/httputil"
)

const maxWebhookBodyBytes = 1 << 20 // 1 MiB

// snsEnvelope is the outer SNS wrapper. The actual provider event is
// JSON-encoded a second time inside Message.
type snsEnvelope struct {
	Type         string `json:"Type"`
	Message      string `json:"Message"`
	SubscribeURL string `json:"SubscribeURL"`
}

type sesNotification struct {
	NotificationType string `json:"notificationType"`
	Mail             struct {
		MessageID string `json:"messageId"`
	} `json:"mail"`
}

// HandleWebhook demuxes the provider's SNS-delivered callback: a
// SubscriptionConfirmation is acknowledged and logged, a Notification
// is decoded a second time to find the provider message id, resolved
// to a Request, and appended as a Result. Any other envelope type is
// rejected.
func (h *Handlers) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	msgType := r.Header.Get("x-amz-sns-message-type")
	if msgType != "Notification" && msgType != "SubscriptionConfirmation" {
		httputil.Error(w, http.StatusBadRequest, "unsupported or missing message type header")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes+1))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if len(body) > maxWebhookBodyBytes {
		httputil.Error(w, http.StatusBadRequest, "body too large")
		return
	}

	var envelope snsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid envelope JSON")
		return
	}

	if envelope.Type == "SubscriptionConfirmation" {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	if envelope.Type != "Notification" {
		httputil.Error(w, http.StatusBadRequest, "unsupported envelope type")
		return
	}

	var notification sesNotification
	if err := json.Unmarshal([]byte(envelope.Message), &notification); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid notification payload")
		return
	}
	if notification.Mail.MessageID == "" {
		httputil.Error(w, http.StatusBadRequest, "missing provider message id")
		return
	}

	requestID, err := h.store.LookupRequestIDByProviderMessageID(notification.Mail.MessageID)
	if err != nil {
		respondAppError(w, "api.webhook", err)
		return
	}

	if _, err := h.store.SaveResult(domain.Result{
		RequestID: requestID,
		Status:    notification.NotificationType,
		Raw:       envelope.Message,
	}); err != nil {
		respondAppError(w, "api.webhook", err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
