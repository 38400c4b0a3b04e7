package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/relkeep/pkg/domain/interfaces"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
	"github.com/m-mizutani/relkeep/pkg/utils/async"
)

type webhookUseCase struct {
	releaseUC interfaces.ReleaseUseCase
	hour      int

	// tags that have a release workflow running or completed, keyed by owner/repo/tag
	mu      sync.Mutex
	handled map[string]struct{}
}

// NewWebhook creates a new instance of WebhookUseCase. hour is the release hour of day used
// for versions created from webhook events.
func NewWebhook(releaseUC interfaces.ReleaseUseCase, hour int) *webhookUseCase {
	return &webhookUseCase{
		releaseUC: releaseUC,
		hour:      hour,
		handled:   make(map[string]struct{}),
	}
}

// ProcessEvent starts the tag-release workflow in the background for new version tags.
// Other events are only logged. A tag is processed once even when GitHub sends several
// deliveries for it (create, release published and release released).
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	logger.Info("Processing webhook event",
		"id", event.ID,
		"type", event.Type,
		"action", event.Action,
		"repository", event.Repository,
		"tag", event.Tag,
		"sender", event.Sender,
		"supported", event.IsSupportedEvent(),
	)

	if !event.IsSupportedEvent() {
		logger.Warn("Unsupported event received",
			"type", event.Type,
			"action", event.Action,
		)
		return nil
	}

	tag := model.VersionTag(event.Tag)
	if !tag.IsValid() {
		logger.Info("Ignoring tag not in version format", "tag", event.Tag)
		return nil
	}

	req := &model.ReleaseRequest{
		Owner: event.Owner,
		Repo:  event.Repo,
		Tag:   tag,
		Hour:  uc.hour,
	}

	key := req.Owner + "/" + req.Repo + "/" + string(req.Tag)
	if !uc.claim(key) {
		logger.Info("Release workflow already started for tag", "id", event.ID, "tag", key)
		return nil
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		if _, err := uc.releaseUC.CreateRelease(ctx, req); err != nil {
			uc.release(key)
			return err
		}
		return nil
	})

	return nil
}

func (uc *webhookUseCase) claim(key string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if _, ok := uc.handled[key]; ok {
		return false
	}
	uc.handled[key] = struct{}{}
	return true
}

// release forgets key so that a later delivery can retry the failed workflow
func (uc *webhookUseCase) release(key string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.handled, key)
}
