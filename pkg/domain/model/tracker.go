package model

// Project is a Jira project as far as release bookkeeping needs it
type Project struct {
	ID       string
	Key      ProjectKey
	Name     string
	Versions []*ReleaseVersion
}

// FindVersion returns the version named name, or nil
func (x *Project) FindVersion(name VersionTag) *ReleaseVersion {
	for _, v := range x.Versions {
		if v != nil && v.Name == name {
			return v
		}
	}
	return nil
}

// ReleaseVersion is a Jira "fix version" created for a version tag
type ReleaseVersion struct {
	ID          string
	Name        VersionTag
	ProjectKey  ProjectKey
	ProjectID   int
	ReleaseDate string
	Released    bool
	Archived    bool
}
