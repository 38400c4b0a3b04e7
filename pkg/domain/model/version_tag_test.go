package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
	"github.com/m-mizutani/relkeep/pkg/domain/types"
)

func TestVersionTag_Parse(t *testing.T) {
	t.Run("valid tag", func(t *testing.T) {
		date, err := model.VersionTag("v2020.02.18.3").Parse()
		gt.NoError(t, err)
		gt.Equal(t, date.Year, 2020)
		gt.Equal(t, date.Month, time.February)
		gt.Equal(t, date.Day, 18)
		gt.Equal(t, date.Patch, 3)
	})

	invalid := []string{
		"2020.02.18.1",
		"v2020-02-18.1",
		"v2020.13.01.1",
		"v2020.02.18",
		"v2020.02.18.0",
		"v2020.02.18.x",
		"v",
		"",
	}
	for _, tag := range invalid {
		t.Run("invalid "+tag, func(t *testing.T) {
			_, err := model.VersionTag(tag).Parse()
			gt.Error(t, err)
			gt.True(t, errors.Is(err, types.ErrInvalidFormat))
		})
	}
}

func TestVersionTag_IsMoreRecentThan(t *testing.T) {
	tests := []struct {
		name string
		a, b model.VersionTag
		want bool
	}{
		{"newer date", "v2020.02.18.1", "v2020.02.13.3", true},
		{"older date", "v2020.02.13.3", "v2020.02.18.1", false},
		{"same date higher patch", "v2020.02.18.2", "v2020.02.18.1", false},
		{"same date lower patch", "v2020.02.18.1", "v2020.02.18.2", false},
		{"across years", "v2021.01.01.1", "v2020.12.31.9", true},
		{"missing prefix on left", "2020.02.18.1", "v2020.02.13.3", false},
		{"missing prefix on right", "v2020.02.18.1", "2020.02.13.3", false},
		{"not a version tag", "v2020.02.18.1", "v1.2.3", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Equal(t, tt.a.IsMoreRecentThan(tt.b), tt.want)
		})
	}
}

func TestVersionTag_IsFirstPatch(t *testing.T) {
	gt.True(t, model.VersionTag("v2020.02.18.1").IsFirstPatch())
	gt.False(t, model.VersionTag("v2020.02.18.2").IsFirstPatch())
	gt.False(t, model.VersionTag("v2020.02.18.11").IsFirstPatch())
}

func TestVersionTag_ReleaseTimestamp(t *testing.T) {
	local := time.Local
	time.Local = time.FixedZone("JST", 9*60*60)
	t.Cleanup(func() { time.Local = local })

	t.Run("hour of day", func(t *testing.T) {
		ts, err := model.VersionTag("v2020.02.18.1").ReleaseTimestamp(15)
		gt.NoError(t, err)
		gt.Equal(t, ts, "2020-02-18T06:00:00.000Z")
	})

	t.Run("midnight by default", func(t *testing.T) {
		ts, err := model.VersionTag("v2020.02.18.2").ReleaseTimestamp(0)
		gt.NoError(t, err)
		gt.Equal(t, ts, "2020-02-17T15:00:00.000Z")
	})

	t.Run("west of UTC", func(t *testing.T) {
		time.Local = time.FixedZone("PST", -8*60*60)
		ts, err := model.VersionTag("v2020.02.18.1").ReleaseTimestamp(20)
		gt.NoError(t, err)
		gt.Equal(t, ts, "2020-02-19T04:00:00.000Z")
	})

	t.Run("invalid tag", func(t *testing.T) {
		_, err := model.VersionTag("2020.02.18.1").ReleaseTimestamp(12)
		gt.True(t, errors.Is(err, types.ErrInvalidFormat))
	})
}

func TestNewVersionTag(t *testing.T) {
	date := time.Date(2020, time.February, 3, 10, 0, 0, 0, time.Local)
	gt.Equal(t, model.NewVersionTag(date, 2), model.VersionTag("v2020.02.03.2"))
	gt.Equal(t, model.NewVersionTag(date, 0), model.VersionTag("v2020.02.03.1"))
	gt.True(t, model.NewVersionTag(date, 5).IsValid())
}
