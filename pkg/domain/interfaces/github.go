package interfaces

import (
	"context"

	"github.com/m-mizutani/relkeep/pkg/domain/model"
)

// SourceHost defines operations for reading tags and commits from GitHub
type SourceHost interface {
	// ListRecentTags returns up to 100 tags ordered by commit date, newest first
	ListRecentTags(ctx context.Context, owner, repo string) ([]*model.Tag, error)

	// FindPreviousDatedTag returns the first recent tag that current is more recent than
	FindPreviousDatedTag(ctx context.Context, owner, repo string, current model.VersionTag, requireFirstPatch bool) (*model.Tag, error)

	// DiffCommits returns the commits reachable from to but not from from
	DiffCommits(ctx context.Context, owner, repo, from, to string) ([]*model.Commit, error)
}
