package model

import (
	"path/filepath"
	"sort"
)

// ArchiveRecord is the identifier/name pair found inside one archive.
// An empty ModID means a manifest was present but carried no usable id.
type ArchiveRecord struct {
	Path        string `json:"path"`
	ModID       string `json:"mod_id"`
	DisplayName string `json:"display_name"`
	Format      string `json:"format"`
}

// File returns the base name of the archive.
func (r *ArchiveRecord) File() string {
	return filepath.Base(r.Path)
}

// HasID reports whether the record can be resolved.
func (r *ArchiveRecord) HasID() bool {
	return r != nil && r.ModID != ""
}

// ResolutionKind classifies the outcome for a single archive.
type ResolutionKind int

const (
	ResolutionSlug       ResolutionKind = iota // resolved to a registry slug
	ResolutionNoMatch                          // id found, registry had no match
	ResolutionNoMetadata                       // no usable id in the archive
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolutionSlug:
		return "slug"
	case ResolutionNoMatch:
		return "no-match"
	case ResolutionNoMetadata:
		return "no-metadata"
	}
	return "unknown"
}

// Outcome is the per-archive result produced by a scan.
type Outcome struct {
	File   string
	Kind   ResolutionKind
	Slug   string
	Record *ArchiveRecord
}

// UnmatchedEntry describes an archive that had an id but no registry match.
type UnmatchedEntry struct {
	File string `json:"file"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Summary accumulates outcomes across one scan. Every archive added lands in
// exactly one bucket.
type Summary struct {
	Offline    bool
	Unmatched  []UnmatchedEntry
	NoMetadata []string

	slugs map[string]struct{}
	total int
}

// NewSummary creates an empty summary.
func NewSummary(offline bool) *Summary {
	return &Summary{
		Offline: offline,
		slugs:   make(map[string]struct{}),
	}
}

// Add routes an outcome into its bucket.
func (s *Summary) Add(o Outcome) {
	if s.slugs == nil {
		s.slugs = make(map[string]struct{})
	}
	s.total++
	switch o.Kind {
	case ResolutionSlug:
		s.slugs[o.Slug] = struct{}{}
	case ResolutionNoMatch:
		entry := UnmatchedEntry{File: o.File}
		if o.Record != nil {
			entry.ID = o.Record.ModID
			entry.Name = o.Record.DisplayName
		}
		s.Unmatched = append(s.Unmatched, entry)
	default:
		s.NoMetadata = append(s.NoMetadata, o.File)
	}
}

// Slugs returns the deduplicated slugs in lexicographic order.
func (s *Summary) Slugs() []string {
	rs := make([]string, 0, len(s.slugs))
	for k := range s.slugs {
		rs = append(rs, k)
	}
	sort.Strings(rs)
	return rs
}

// SortedUnmatched returns a copy of the unmatched entries ordered by file name.
func (s *Summary) SortedUnmatched() []UnmatchedEntry {
	rs := make([]UnmatchedEntry, len(s.Unmatched))
	copy(rs, s.Unmatched)
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].File < rs[j].File
	})
	return rs
}

// SortedNoMetadata returns a copy of the no-metadata file names in order.
func (s *Summary) SortedNoMetadata() []string {
	rs := make([]string, len(s.NoMetadata))
	copy(rs, s.NoMetadata)
	sort.Strings(rs)
	return rs
}

// Total is the number of archives added.
func (s *Summary) Total() int {
	return s.total
}
