package github

import (
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
)

// ParseEvent decodes a webhook delivery into a model.WebhookEvent. Event types other than
// create and release are returned with EventTypeUnknown.
func ParseEvent(deliveryID, eventType string, body []byte) (*model.WebhookEvent, error) {
	payload, err := github.ParseWebHook(eventType, body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse webhook payload",
			goerr.V("event_type", eventType),
			goerr.V("delivery_id", deliveryID),
		)
	}

	event := &model.WebhookEvent{
		ID:         deliveryID,
		Type:       model.WebhookEventType(eventType),
		ReceivedAt: time.Now(),
		RawPayload: body,
	}

	switch e := payload.(type) {
	case *github.CreateEvent:
		event.RefType = e.GetRefType()
		if event.RefType == "tag" {
			event.Tag = e.GetRef()
		}
		setRepository(event, e.GetRepo())
		event.Sender = e.GetSender().GetLogin()

	case *github.ReleaseEvent:
		event.Action = e.GetAction()
		event.Tag = e.GetRelease().GetTagName()
		setRepository(event, e.GetRepo())
		event.Sender = e.GetSender().GetLogin()

	default:
		event.Type = model.EventTypeUnknown
	}

	return event, nil
}

func setRepository(event *model.WebhookEvent, repo *github.Repository) {
	event.Repository = repo.GetFullName()
	event.Owner = repo.GetOwner().GetLogin()
	event.Repo = repo.GetName()
}
