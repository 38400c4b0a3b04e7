package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relkeep/pkg/domain/types"
)

// Commit is a commit returned by a compare between two refs
type Commit struct {
	SHA     string
	Message string
}

// Tag is a git tag with the commit it points to
type Tag struct {
	Name        VersionTag
	CommitID    string
	CommittedAt time.Time
}

// FindPreviousDatedTag returns the first tag in tags (ordered newest first) whose date is
// strictly older than current. When requireFirstPatch is set only tags ending in ".1" qualify.
// Same-day tags are never older than current, so the result is the first older-day entry in
// list order rather than the immediate predecessor.
func FindPreviousDatedTag(tags []*Tag, current VersionTag, requireFirstPatch bool) (*Tag, error) {
	for _, tag := range tags {
		if tag == nil {
			continue
		}
		if requireFirstPatch && !tag.Name.IsFirstPatch() {
			continue
		}
		if current.IsMoreRecentThan(tag.Name) {
			return tag, nil
		}
	}

	return nil, goerr.Wrap(types.ErrNotFound, "no previous dated tag",
		goerr.V("current", current),
		goerr.V("require_first_patch", requireFirstPatch),
		goerr.V("tag_count", len(tags)),
	)
}
