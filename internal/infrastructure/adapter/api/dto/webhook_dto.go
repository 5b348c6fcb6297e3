package dto

// WebhookResponse acknowledges a processed provider callback. Status is
// "credited" for a first delivery, "already_processed" for a retry, and
// "ignored" for non-payment events.
type WebhookResponse struct {
	Status string `json:"status"`
}
