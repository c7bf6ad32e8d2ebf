package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/ncruces/zenity"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/modslug/internal/cache"
	"github.com/xxxsen/modslug/internal/capability"
	"github.com/xxxsen/modslug/internal/config"
	"github.com/xxxsen/modslug/internal/export"
	"github.com/xxxsen/modslug/internal/modrinth"
	"github.com/xxxsen/modslug/internal/resolver"
	"github.com/xxxsen/modslug/internal/scan"
	"github.com/xxxsen/modslug/internal/storage"
)

// pickFolder opens the native folder dialog. An empty path means the user
// cancelled.
var pickFolder = func() (string, error) {
	dir, err := zenity.SelectFile(
		zenity.Title("Select your mods folder"),
		zenity.Directory(),
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", nil
	}
	return strings.TrimSpace(dir), err
}

func isTerminal(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// announceCapabilities prints each missing capability once.
func announceCapabilities(ctx context.Context, out io.Writer, caps capability.Set) {
	logger := logutil.GetLogger(ctx)
	for _, msg := range caps.Warnings() {
		logger.Warn("capability missing", zap.String("detail", msg))
		fmt.Fprintf(out, "WARNING: %s\n", msg)
	}
}

// newResolver builds the registry resolver from config.
func newResolver(cfg *config.Config) (*resolver.Resolver, error) {
	client, err := modrinth.New(cfg.Registry.Host, cfg.Registry.UserAgent, cfg.Registry.Timeout())
	if err != nil {
		return nil, err
	}
	return resolver.New(client,
		resolver.WithDelay(cfg.Registry.Delay()),
		resolver.WithSearchLimit(cfg.Registry.SearchLimit),
	), nil
}

// buildResolver wires the registry resolver, putting the slug cache in
// front of it when one is configured. The returned func releases the cache.
func buildResolver(ctx context.Context, cfg *config.Config) (scan.Resolver, func(), error) {
	r, err := newResolver(cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Cache.Path == "" {
		return r, func() {}, nil
	}
	store, err := cache.Open(ctx, cfg.Cache.Path, cfg.Cache.TTL())
	if err != nil {
		return nil, nil, err
	}
	logutil.GetLogger(ctx).Info("slug cache enabled", zap.String("path", cfg.Cache.Path))
	closer := func() {
		if err := store.Close(); err != nil {
			logutil.GetLogger(ctx).Warn("close slug cache failed", zap.Error(err))
		}
	}
	return cache.Wrap(store, r), closer, nil
}

// newUploader returns nil when no upload bucket is configured.
func newUploader(ctx context.Context, cfg *config.Config) (export.Uploader, error) {
	if cfg.Upload.Bucket == "" {
		return nil, nil
	}
	u, err := storage.NewS3Uploader(ctx, cfg.Upload)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func waitForEnter(in io.Reader, out io.Writer) {
	fmt.Fprint(out, "\nPress Enter to exit...")
	_, _ = bufio.NewReader(in).ReadString('\n')
}
