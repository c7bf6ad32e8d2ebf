// Package resolver maps a mod's internal identifier to its public Modrinth
// slug.
package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/xxxsen/modslug/internal/modrinth"
)

const defaultSearchLimit = 5

// Registry is the subset of the Modrinth API used for resolution.
type Registry interface {
	GetProject(ctx context.Context, idOrSlug string) (*modrinth.Project, error)
	Search(ctx context.Context, query string, limit int) (*modrinth.SearchResult, error)
}

// Resolver runs the lookup heuristic: direct lookup, then search by id, then
// one search by display name.
type Resolver struct {
	registry    Registry
	delay       time.Duration
	searchLimit int
	sleep       func(ctx context.Context, d time.Duration) error
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithDelay sets the throttle applied before each resolution.
func WithDelay(d time.Duration) Option {
	return func(r *Resolver) { r.delay = d }
}

// WithSearchLimit sets how many hits a search asks for.
func WithSearchLimit(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.searchLimit = n
		}
	}
}

// New builds a resolver on top of a registry client.
func New(registry Registry, opts ...Option) *Resolver {
	r := &Resolver{
		registry:    registry,
		searchLimit: defaultSearchLimit,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the slug for id. name is the optional display name used to
// disambiguate search hits. Failures of any kind report no match.
func (r *Resolver) Resolve(ctx context.Context, id, name string) (string, bool) {
	return r.resolve(ctx, id, name, false)
}

func (r *Resolver) resolve(ctx context.Context, id, name string, retried bool) (string, bool) {
	logger := logutil.GetLogger(ctx).With(zap.String("identifier", id))

	if err := r.sleep(ctx, r.delay); err != nil {
		return "", false
	}

	logger.Debug("direct lookup")
	project, err := r.registry.GetProject(ctx, id)
	switch {
	case err == nil:
		if project.Slug == "" {
			logger.Info("direct lookup returned no slug")
			return "", false
		}
		logger.Info("direct match found", zap.String("slug", project.Slug))
		return project.Slug, true
	case errors.Is(err, modrinth.ErrNotFound):
		logger.Info("direct lookup not found, searching")
	default:
		logger.Warn("direct lookup failed", zap.Error(err))
		return "", false
	}

	result, err := r.registry.Search(ctx, id, r.searchLimit)
	if err != nil {
		logger.Warn("search failed", zap.Error(err))
		return "", false
	}
	if len(result.Hits) == 0 {
		logger.Info("search returned no results")
		if !retried && name != "" && !equalFold(name, id) {
			logger.Info("retrying search with display name", zap.String("name", name))
			return r.resolve(ctx, name, "", true)
		}
		return "", false
	}

	hit := result.Hits[0]
	if hit.Slug == "" {
		logger.Info("search hit has no slug", zap.String("hit_title", hit.Title))
		return "", false
	}
	slug, reason, ok := disambiguate(hit, id, name)
	if !ok {
		logger.Info("search hit is ambiguous, skipping",
			zap.String("name", name),
			zap.String("hit_title", hit.Title),
			zap.String("hit_slug", hit.Slug),
		)
		return "", false
	}
	logger.Info("search match found",
		zap.String("slug", slug),
		zap.String("reason", reason),
		zap.String("hit_title", hit.Title),
	)
	return slug, true
}

// disambiguate decides whether the first search hit is the queried mod.
func disambiguate(hit modrinth.SearchHit, id, name string) (string, string, bool) {
	switch {
	case hit.Slug == id || hit.ProjectID == id:
		return hit.Slug, "id", true
	case name != "" && hit.Title != "" && (containsFold(hit.Title, name) || containsFold(name, hit.Title)):
		// titles are often shorter than jar display names ("Alpha" vs "Alpha Mod")
		return hit.Slug, "name", true
	case name == "":
		return hit.Slug, "first-hit", true
	}
	return "", "", false
}

func equalFold(a, b string) bool {
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

func containsFold(s, substr string) bool {
	fold := cases.Fold()
	return strings.Contains(fold.String(s), fold.String(substr))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
