package model

import "time"

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypeCreate  WebhookEventType = "create"
	EventTypeRelease WebhookEventType = "release"
	EventTypeUnknown WebhookEventType = "unknown"
)

// WebhookEvent represents a webhook event received from GitHub
type WebhookEvent struct {
	ID         string           // Retrieved from X-GitHub-Delivery header
	Type       WebhookEventType // Retrieved from X-GitHub-Event header
	Action     string           // Event action (e.g., published, released)
	RefType    string           // "tag" or "branch" for create events
	Repository string           // Repository full name
	Owner      string           // Repository owner
	Repo       string           // Repository name
	Tag        string           // Tag name for tag creation and release events
	Sender     string           // Sender username
	ReceivedAt time.Time        // Time when the event was received
	RawPayload []byte           // Raw JSON payload
}

// IsSupportedEvent reports whether the event announces a new tag
func (e *WebhookEvent) IsSupportedEvent() bool {
	switch e.Type {
	case EventTypeCreate:
		return e.RefType == "tag" && e.Tag != ""
	case EventTypeRelease:
		return (e.Action == "released" || e.Action == "published") && e.Tag != ""
	default:
		return false
	}
}
