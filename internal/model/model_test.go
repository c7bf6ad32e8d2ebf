package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryDeduplicatesAndSortsSlugs(t *testing.T) {
	s := NewSummary(false)
	s.Add(Outcome{File: "b.jar", Kind: ResolutionSlug, Slug: "sodium"})
	s.Add(Outcome{File: "a.jar", Kind: ResolutionSlug, Slug: "lithium"})
	s.Add(Outcome{File: "c.jar", Kind: ResolutionSlug, Slug: "sodium"})

	assert.Equal(t, []string{"lithium", "sodium"}, s.Slugs())
	assert.Equal(t, 3, s.Total())
}

func TestSummaryBuckets(t *testing.T) {
	s := NewSummary(false)
	s.Add(Outcome{File: "z.jar", Kind: ResolutionNoMatch, Record: &ArchiveRecord{ModID: "zz", DisplayName: "Zed"}})
	s.Add(Outcome{File: "m.jar", Kind: ResolutionNoMatch, Record: &ArchiveRecord{ModID: "mm"}})
	s.Add(Outcome{File: "y.jar", Kind: ResolutionNoMetadata})
	s.Add(Outcome{File: "x.jar", Kind: ResolutionNoMetadata})

	assert.Empty(t, s.Slugs())
	assert.Equal(t, []UnmatchedEntry{
		{File: "m.jar", ID: "mm"},
		{File: "z.jar", ID: "zz", Name: "Zed"},
	}, s.SortedUnmatched())
	assert.Equal(t, []string{"x.jar", "y.jar"}, s.SortedNoMetadata())
	// insertion order is untouched
	assert.Equal(t, "z.jar", s.Unmatched[0].File)
	assert.Equal(t, 4, s.Total())
}

func TestArchiveRecordHasID(t *testing.T) {
	var nilRec *ArchiveRecord
	assert.False(t, nilRec.HasID())
	assert.False(t, (&ArchiveRecord{}).HasID())
	assert.True(t, (&ArchiveRecord{ModID: "a"}).HasID())
	assert.Equal(t, "a.jar", (&ArchiveRecord{Path: "/mods/a.jar"}).File())
}
