package scan

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/modslug/internal/capability"
	"github.com/xxxsen/modslug/internal/manifest"
	"github.com/xxxsen/modslug/internal/model"
)

type mapResolver struct {
	slugs map[string]string
	calls []string
}

func (r *mapResolver) Resolve(ctx context.Context, id, name string) (string, bool) {
	r.calls = append(r.calls, id)
	slug, ok := r.slugs[id]
	return slug, ok
}

type recordingObserver struct {
	total    int
	started  []string
	outcomes []model.Outcome
}

func (o *recordingObserver) OnStart(dir string, total int) {
	o.total = total
}

func (o *recordingObserver) OnItemStart(idx, total int, file string) {
	o.started = append(o.started, file)
}

func (o *recordingObserver) OnItemDone(idx, total int, out model.Outcome) {
	o.outcomes = append(o.outcomes, out)
}

func writeJar(t *testing.T, path string, files map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for entry, data := range files {
		fw, err := w.Create(entry)
		require.NoError(t, err)
		_, err = fw.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func fabric(id, name string) map[string]string {
	return map[string]string{"fabric.mod.json": `{"id":"` + id + `","name":"` + name + `"}`}
}

func buildModsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeJar(t, filepath.Join(dir, "sodium-0.5.jar"), fabric("sodium", "Sodium"))
	writeJar(t, filepath.Join(dir, "Sodium-Extra.JAR"), fabric("sodium", "Sodium"))
	writeJar(t, filepath.Join(dir, "lithium.jar"), fabric("lithium", "Lithium"))
	writeJar(t, filepath.Join(dir, "private.jar"), fabric("private_mod", "Private"))
	writeJar(t, filepath.Join(dir, "library.jar"), map[string]string{"META-INF/MANIFEST.MF": "Manifest-Version: 1.0\n"})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.jar"), []byte("not a zip"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jar"), 0o755))
	writeJar(t, filepath.Join(dir, "nested.jar", "inner.jar"), fabric("inner", "Inner"))
	return dir
}

func newExtractor() *manifest.Extractor {
	return manifest.NewExtractor(capability.Set{ManifestTOML: true})
}

func TestListArchives(t *testing.T) {
	dir := buildModsDir(t)

	paths, err := ListArchives(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{"Sodium-Extra.JAR", "corrupt.jar", "library.jar", "lithium.jar", "private.jar", "sodium-0.5.jar"}, names)
}

func TestScanBucketsEveryArchiveOnce(t *testing.T) {
	dir := buildModsDir(t)
	res := &mapResolver{slugs: map[string]string{"sodium": "sodium", "lithium": "lithium"}}
	obs := &recordingObserver{}

	summary, err := New(newExtractor(), res, obs).Scan(context.Background(), dir)
	require.NoError(t, err)

	assert.False(t, summary.Offline)
	assert.Equal(t, []string{"lithium", "sodium"}, summary.Slugs())
	assert.Equal(t, []model.UnmatchedEntry{{File: "private.jar", ID: "private_mod", Name: "Private"}}, summary.SortedUnmatched())
	assert.Equal(t, []string{"corrupt.jar", "library.jar"}, summary.SortedNoMetadata())

	assert.Equal(t, 6, obs.total)
	assert.Len(t, obs.outcomes, 6)
	assert.Equal(t, 6, summary.Total())
	buckets := 0
	for _, o := range obs.outcomes {
		switch o.Kind {
		case model.ResolutionSlug, model.ResolutionNoMatch, model.ResolutionNoMetadata:
			buckets++
		}
	}
	assert.Equal(t, 6, buckets)
	assert.ElementsMatch(t, []string{"sodium", "sodium", "lithium", "private_mod"}, res.calls)
}

func TestScanOfflineUsesIDs(t *testing.T) {
	dir := buildModsDir(t)

	s := New(newExtractor(), nil, nil)
	require.True(t, s.Offline())
	summary, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, summary.Offline)
	assert.Equal(t, []string{"lithium", "private_mod", "sodium"}, summary.Slugs())
	assert.Empty(t, summary.Unmatched)
	assert.Len(t, summary.NoMetadata, 2)
}

func TestScanMissingFolderIsFatal(t *testing.T) {
	summary, err := New(newExtractor(), nil, nil).Scan(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Nil(t, summary)
}

func TestScanCancelled(t *testing.T) {
	dir := buildModsDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(newExtractor(), nil, nil).Scan(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}
