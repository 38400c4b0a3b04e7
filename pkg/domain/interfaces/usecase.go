package interfaces

import (
	"context"

	"github.com/m-mizutani/relkeep/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent processes a webhook event
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}

// ReleaseUseCase defines the tag-release workflow
type ReleaseUseCase interface {
	// CreateRelease creates Jira versions for the tag and attaches the issues referenced by
	// commits since the previous dated tag
	CreateRelease(ctx context.Context, req *model.ReleaseRequest) (*model.Report, error)
}

// DeployUseCase defines the deploy-label workflow
type DeployUseCase interface {
	// LabelDeploy labels the issues referenced by commits between two refs
	LabelDeploy(ctx context.Context, req *model.DeployRequest) (*model.Report, error)
}
