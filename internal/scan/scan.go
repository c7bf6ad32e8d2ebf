package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/modslug/internal/manifest"
	"github.com/xxxsen/modslug/internal/model"
)

// ArchiveExt is the file extension of mod archives, matched case-insensitively.
const ArchiveExt = ".jar"

// Extractor reads the manifest record of one archive.
type Extractor interface {
	Extract(ctx context.Context, path string) (*model.ArchiveRecord, error)
}

// Resolver maps an identifier to a registry slug.
type Resolver interface {
	Resolve(ctx context.Context, id, name string) (string, bool)
}

// Observer receives progress events. Implementations only print.
type Observer interface {
	OnStart(dir string, total int)
	OnItemStart(idx, total int, file string)
	OnItemDone(idx, total int, outcome model.Outcome)
}

type nopObserver struct{}

func (nopObserver) OnStart(string, int)                {}
func (nopObserver) OnItemStart(int, int, string)       {}
func (nopObserver) OnItemDone(int, int, model.Outcome) {}

// Scanner walks a folder and resolves every archive in it, one at a time.
type Scanner struct {
	extractor Extractor
	resolver  Resolver
	observer  Observer
}

// New builds a scanner. A nil resolver puts the scanner in offline mode,
// where the extracted identifier is used as the slug.
func New(extractor Extractor, resolver Resolver, observer Observer) *Scanner {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Scanner{
		extractor: extractor,
		resolver:  resolver,
		observer:  observer,
	}
}

// Offline reports whether registry lookups are disabled.
func (s *Scanner) Offline() bool {
	return s.resolver == nil
}

// ListArchives returns the archives directly inside dir, sorted by name.
func ListArchives(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", dir, err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ArchiveExt) {
			continue
		}
		full := filepath.Join(dir, entry.Name())
		if !entry.Type().IsRegular() {
			info, err := os.Stat(full)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		paths = append(paths, full)
	}
	return paths, nil
}

// Scan processes every archive in dir. Only a folder that cannot be listed
// fails the scan; per-archive problems end up in the summary buckets.
func (s *Scanner) Scan(ctx context.Context, dir string) (*model.Summary, error) {
	logger := logutil.GetLogger(ctx)

	paths, err := ListArchives(dir)
	if err != nil {
		return nil, err
	}
	logger.Info("scanning folder", zap.String("dir", dir), zap.Int("archives", len(paths)))
	s.observer.OnStart(dir, len(paths))

	summary := model.NewSummary(s.Offline())
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.observer.OnItemStart(i+1, len(paths), filepath.Base(path))
		outcome := s.processOne(ctx, path)
		summary.Add(outcome)
		s.observer.OnItemDone(i+1, len(paths), outcome)
	}

	logger.Info("scan completed",
		zap.Int("archives", summary.Total()),
		zap.Int("slugs", len(summary.Slugs())),
		zap.Int("unmatched", len(summary.Unmatched)),
		zap.Int("no_metadata", len(summary.NoMetadata)),
	)
	return summary, nil
}

func (s *Scanner) processOne(ctx context.Context, path string) model.Outcome {
	logger := logutil.GetLogger(ctx)
	outcome := model.Outcome{File: filepath.Base(path), Kind: model.ResolutionNoMetadata}

	rec, err := s.extractor.Extract(ctx, path)
	if err != nil {
		if errors.Is(err, manifest.ErrInvalidArchive) {
			logger.Error("invalid archive", zap.String("path", path), zap.Error(err))
		} else {
			logger.Error("extract archive failed", zap.String("path", path), zap.Error(err))
		}
		return outcome
	}
	if !rec.HasID() {
		logger.Debug("no mod id in archive", zap.String("path", path))
		return outcome
	}
	outcome.Record = rec

	if s.resolver == nil {
		outcome.Kind = model.ResolutionSlug
		outcome.Slug = rec.ModID
		return outcome
	}

	slug, ok := s.resolver.Resolve(ctx, rec.ModID, rec.DisplayName)
	if !ok {
		outcome.Kind = model.ResolutionNoMatch
		return outcome
	}
	outcome.Kind = model.ResolutionSlug
	outcome.Slug = slug
	return outcome
}
