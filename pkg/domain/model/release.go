package model

// ReleaseRequest is the input of the tag-release workflow
type ReleaseRequest struct {
	Owner          string     // Repository owner
	Repo           string     // Repository name
	Tag            VersionTag // Tag to release
	Hour           int        // Release hour of day in local time
	FirstPatchOnly bool       // Diff against the previous day's first patch instead of its last tag
}

// DeployRequest is the input of the deploy-label workflow
type DeployRequest struct {
	Owner       string
	Repo        string
	Previous    string // Previously deployed ref
	Current     string // Newly deployed ref
	Action      string // Deploy action type, e.g. "deployed"
	Environment string // Target environment, e.g. "production"
}
