// Package export renders scan summaries and ships the slug list to the
// clipboard or a text file.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xxxsen/modslug/internal/model"
)

const reportSeparator = "===================="

// SlugList returns the sorted slugs joined by newlines. This is the
// clipboard payload.
func SlugList(s *model.Summary) string {
	return strings.Join(s.Slugs(), "\n")
}

// Report returns the content of the saved text file: the slug list, a
// separator and both unmatched sections with their counts.
func Report(s *model.Summary) string {
	var sb strings.Builder
	sb.WriteString(SlugList(s))
	sb.WriteString("\n\n" + reportSeparator + "\n")

	if unmatched := s.SortedUnmatched(); len(unmatched) > 0 {
		fmt.Fprintf(&sb, "\nMods with ID, but without found Modrinth Project (%d):\n", len(unmatched))
		for _, item := range unmatched {
			fmt.Fprintf(&sb, "- %s (ID: %s, Name: %s)\n", item.File, item.ID, displayName(item.Name))
		}
	}
	if missing := s.SortedNoMetadata(); len(missing) > 0 {
		fmt.Fprintf(&sb, "\nJARs without recognizable Mod ID in metadata (%d):\n", len(missing))
		for _, name := range missing {
			fmt.Fprintf(&sb, "- %s\n", name)
		}
	}
	return sb.String()
}

// SaveReport writes the report to name inside dir and returns the absolute
// path written.
func SaveReport(dir, name string, s *model.Summary) (string, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, name)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve output path %s: %w", path, err)
	}
	if err := os.WriteFile(abs, []byte(Report(s)), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", abs, err)
	}
	return abs, nil
}
