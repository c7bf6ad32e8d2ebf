// Package manifest reads the mod identifier and display name embedded in a
// mod archive.
package manifest

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/modslug/internal/capability"
	"github.com/xxxsen/modslug/internal/model"
)

// maxManifestSize bounds how much of a manifest entry is read.
const maxManifestSize = 4 << 20

// ErrInvalidArchive is returned when the file is not a readable zip container.
var ErrInvalidArchive = errors.New("not a valid jar/zip archive")

// Extractor reads manifests out of archives.
type Extractor struct {
	toml bool
}

// NewExtractor builds an extractor. TOML manifests are only read when the
// capability set allows it.
func NewExtractor(caps capability.Set) *Extractor {
	return &Extractor{toml: caps.ManifestTOML}
}

// Extract returns the record found in the archive at path.
//
// A nil record with a nil error means no known manifest exists in the
// archive. A record with an empty ModID means a manifest was found but none
// of them carried an id. Container failures wrap ErrInvalidArchive.
func (e *Extractor) Extract(ctx context.Context, path string) (*model.ArchiveRecord, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w: %w", path, ErrInvalidArchive, err)
	}
	defer zr.Close()

	return e.extract(ctx, path, &zr.Reader), nil
}

func (e *Extractor) extract(ctx context.Context, path string, zr *zip.Reader) *model.ArchiveRecord {
	logger := logutil.GetLogger(ctx)

	index := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		index[f.Name] = f
	}

	var found *model.ArchiveRecord
	for _, fm := range formats {
		if fm.toml && !e.toml {
			continue
		}
		entry, ok := index[fm.path]
		if !ok {
			continue
		}
		id, name, err := readManifest(entry, fm)
		if err != nil {
			logger.Warn("read manifest failed",
				zap.String("path", path),
				zap.String("manifest", fm.path),
				zap.Error(err),
			)
			continue
		}
		rec := &model.ArchiveRecord{
			Path:        path,
			ModID:       id,
			DisplayName: name,
			Format:      fm.name,
		}
		if rec.HasID() {
			logger.Debug("manifest found",
				zap.String("path", path),
				zap.String("manifest", fm.path),
				zap.String("id", id),
				zap.String("name", name),
			)
			return rec
		}
		found = rec
	}
	return found
}

func readManifest(entry *zip.File, fm format) (string, string, error) {
	rc, err := entry.Open()
	if err != nil {
		return "", "", fmt.Errorf("open entry: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxManifestSize))
	if err != nil {
		return "", "", fmt.Errorf("read entry: %w", err)
	}
	return fm.parse(data)
}
