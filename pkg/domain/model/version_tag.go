package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relkeep/pkg/domain/types"
)

// VersionTag is a date encoded version such as v2020.02.18.1. It is used both as a git tag
// name and as a Jira version name.
type VersionTag string

const (
	versionTagPrefix = "v"

	// versionDateLayout is the calendar part of a version tag
	versionDateLayout = "2006.01.02"

	// releaseTimestampLayout matches the ISO-8601 form Jira accepts for releaseDate
	releaseTimestampLayout = "2006-01-02T15:04:05.000Z"
)

// VersionDate is the decoded form of a VersionTag
type VersionDate struct {
	Year  int
	Month time.Month
	Day   int
	Patch int
}

// NewVersionTag formats date as a version tag. patch lower than 1 is treated as 1.
func NewVersionTag(date time.Time, patch int) VersionTag {
	if patch < 1 {
		patch = 1
	}
	return VersionTag(fmt.Sprintf("%s%s.%d", versionTagPrefix, date.Format(versionDateLayout), patch))
}

func (x VersionTag) String() string { return string(x) }

// datePart returns the segment between the leading "v" and the last "."
func (x VersionTag) datePart() string {
	s := string(x)
	idx := strings.LastIndex(s, ".")
	if idx < len(versionTagPrefix) {
		return ""
	}
	return s[len(versionTagPrefix):idx]
}

// localDate returns midnight of the tag's calendar date in local time
func (x VersionTag) localDate() (time.Time, error) {
	if !strings.HasPrefix(string(x), versionTagPrefix) {
		return time.Time{}, goerr.Wrap(types.ErrInvalidFormat, "version tag must start with 'v'", goerr.V("tag", x))
	}

	t, err := time.ParseInLocation(versionDateLayout, x.datePart(), time.Local)
	if err != nil {
		return time.Time{}, goerr.Wrap(types.ErrInvalidFormat, "version tag date does not match YYYY.MM.DD",
			goerr.V("tag", x),
			goerr.V("cause", err.Error()),
		)
	}
	return t, nil
}

// Parse decodes the tag. Errors wrap types.ErrInvalidFormat.
func (x VersionTag) Parse() (*VersionDate, error) {
	date, err := x.localDate()
	if err != nil {
		return nil, err
	}

	s := string(x)
	patch, err := strconv.Atoi(s[strings.LastIndex(s, ".")+1:])
	if err != nil || patch < 1 {
		return nil, goerr.Wrap(types.ErrInvalidFormat, "version tag patch must be a positive integer", goerr.V("tag", x))
	}

	return &VersionDate{
		Year:  date.Year(),
		Month: date.Month(),
		Day:   date.Day(),
		Patch: patch,
	}, nil
}

// IsValid reports whether Parse succeeds
func (x VersionTag) IsValid() bool {
	_, err := x.Parse()
	return err == nil
}

// IsMoreRecentThan compares the calendar dates of two tags. The patch number is not part of
// the comparison, so two tags of the same day are never more recent than each other. An
// invalid tag on either side yields false instead of an error.
func (x VersionTag) IsMoreRecentThan(other VersionTag) bool {
	if !x.IsValid() || !other.IsValid() {
		return false
	}

	// both are valid, so localDate cannot fail here
	a, _ := x.localDate()
	b, _ := other.localDate()
	return a.After(b)
}

// IsFirstPatch reports whether the tag is the first one of its day
func (x VersionTag) IsFirstPatch() bool {
	return strings.HasSuffix(string(x), ".1")
}

// ReleaseTimestamp returns the tag's date at hourOfDay local time, in UTC ISO-8601.
func (x VersionTag) ReleaseTimestamp(hourOfDay int) (string, error) {
	if _, err := x.Parse(); err != nil {
		return "", err
	}

	date, _ := x.localDate()
	return date.Add(time.Duration(hourOfDay) * time.Hour).UTC().Format(releaseTimestampLayout), nil
}
