package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/modslug/internal/modrinth"
)

type searchCall struct {
	query string
	limit int
}

type fakeRegistry struct {
	projects map[string]*modrinth.Project
	projErr  error
	hits     map[string][]modrinth.SearchHit
	srchErr  error

	getCalls    []string
	searchCalls []searchCall
}

func (f *fakeRegistry) GetProject(ctx context.Context, id string) (*modrinth.Project, error) {
	f.getCalls = append(f.getCalls, id)
	if f.projErr != nil {
		return nil, f.projErr
	}
	if p, ok := f.projects[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("get project: %w", modrinth.ErrNotFound)
}

func (f *fakeRegistry) Search(ctx context.Context, query string, limit int) (*modrinth.SearchResult, error) {
	f.searchCalls = append(f.searchCalls, searchCall{query: query, limit: limit})
	if f.srchErr != nil {
		return nil, f.srchErr
	}
	return &modrinth.SearchResult{Hits: f.hits[query]}, nil
}

func newTestResolver(reg Registry) *Resolver {
	return New(reg, WithDelay(0))
}

var alphaHits = []modrinth.SearchHit{{Slug: "a", Title: "Alpha", ProjectID: "x"}}

func TestResolveDisambiguation(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		modName  string
		wantSlug string
		wantOK   bool
	}{
		{name: "project id match", id: "x", wantSlug: "a", wantOK: true},
		{name: "slug match", id: "a", modName: "Unrelated", wantSlug: "a", wantOK: true},
		{name: "name substring", id: "y", modName: "Alpha Mod", wantSlug: "a", wantOK: true},
		{name: "name inside title case-insensitive", id: "y", modName: "alph", wantSlug: "a", wantOK: true},
		{name: "no name takes first hit", id: "y", wantSlug: "a", wantOK: true},
		{name: "conflicting name rejects", id: "y", modName: "Beta", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &fakeRegistry{hits: map[string][]modrinth.SearchHit{tt.id: alphaHits}}
			slug, ok := newTestResolver(reg).Resolve(context.Background(), tt.id, tt.modName)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantSlug, slug)
		})
	}
}

func TestResolveSearchHitWithoutSlug(t *testing.T) {
	slugless := []modrinth.SearchHit{{Title: "Alpha", ProjectID: "p"}}
	tests := []struct {
		name    string
		id      string
		modName string
	}{
		{name: "project id match", id: "p", modName: "Alpha"},
		{name: "first hit", id: "y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &fakeRegistry{hits: map[string][]modrinth.SearchHit{tt.id: slugless}}
			slug, ok := newTestResolver(reg).Resolve(context.Background(), tt.id, tt.modName)
			assert.False(t, ok)
			assert.Empty(t, slug)
		})
	}
}

func TestResolveDirectLookupShortCircuits(t *testing.T) {
	reg := &fakeRegistry{projects: map[string]*modrinth.Project{"sodium": {Slug: "sodium"}}}

	slug, ok := newTestResolver(reg).Resolve(context.Background(), "sodium", "Sodium")
	require.True(t, ok)
	assert.Equal(t, "sodium", slug)
	assert.Empty(t, reg.searchCalls)
}

func TestResolveDirectLookupWithoutSlug(t *testing.T) {
	reg := &fakeRegistry{
		projects: map[string]*modrinth.Project{"odd": {ID: "odd"}},
		hits:     map[string][]modrinth.SearchHit{"odd": alphaHits},
	}

	_, ok := newTestResolver(reg).Resolve(context.Background(), "odd", "")
	assert.False(t, ok)
	assert.Empty(t, reg.searchCalls)
}

func TestResolveDirectLookupErrorAborts(t *testing.T) {
	reg := &fakeRegistry{projErr: &modrinth.StatusError{Op: "get project", StatusCode: 500}}

	_, ok := newTestResolver(reg).Resolve(context.Background(), "x", "Alpha")
	assert.False(t, ok)
	assert.Empty(t, reg.searchCalls)
}

func TestResolveSearchErrorIsNoMatch(t *testing.T) {
	reg := &fakeRegistry{srchErr: errors.New("dial tcp: timeout")}

	_, ok := newTestResolver(reg).Resolve(context.Background(), "x", "Alpha")
	assert.False(t, ok)
	assert.Len(t, reg.searchCalls, 1)
}

func TestResolveRetriesByNameOnce(t *testing.T) {
	reg := &fakeRegistry{}

	_, ok := newTestResolver(reg).Resolve(context.Background(), "jei_core", "Just Enough Items")
	assert.False(t, ok)
	assert.Equal(t, []string{"jei_core", "Just Enough Items"}, reg.getCalls)
	assert.Equal(t, []searchCall{
		{query: "jei_core", limit: 5},
		{query: "Just Enough Items", limit: 5},
	}, reg.searchCalls)
}

func TestResolveRetryByNameFindsFirstHit(t *testing.T) {
	reg := &fakeRegistry{hits: map[string][]modrinth.SearchHit{
		"Just Enough Items": {{Slug: "jei", Title: "Just Enough Items (JEI)", ProjectID: "u6dRKJwZ"}},
	}}

	slug, ok := newTestResolver(reg).Resolve(context.Background(), "jei_core", "Just Enough Items")
	require.True(t, ok)
	assert.Equal(t, "jei", slug)
}

func TestResolveNoRetryWhenNameEqualsID(t *testing.T) {
	reg := &fakeRegistry{}

	_, ok := newTestResolver(reg).Resolve(context.Background(), "Sodium", "sodium")
	assert.False(t, ok)
	assert.Len(t, reg.searchCalls, 1)

	reg = &fakeRegistry{}
	_, ok = newTestResolver(reg).Resolve(context.Background(), "sodium", "")
	assert.False(t, ok)
	assert.Len(t, reg.searchCalls, 1)
}

func TestResolveThrottlesEveryAttempt(t *testing.T) {
	reg := &fakeRegistry{}
	r := New(reg, WithDelay(300*time.Millisecond), WithSearchLimit(7))
	var slept []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	_, ok := r.Resolve(context.Background(), "a", "B")
	assert.False(t, ok)
	assert.Equal(t, []time.Duration{300 * time.Millisecond, 300 * time.Millisecond}, slept)
	assert.Equal(t, 7, reg.searchCalls[0].limit)
}

func TestResolveCancelledContext(t *testing.T) {
	reg := &fakeRegistry{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := New(reg, WithDelay(time.Second)).Resolve(ctx, "a", "")
	assert.False(t, ok)
	assert.Empty(t, reg.getCalls)
}

func TestResolveAgainstHTTPServer(t *testing.T) {
	var projectCalls, searchCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/project/fabric-api":
			projectCalls++
			_, _ = w.Write([]byte(`{"slug":"fabric-api"}`))
		case "/search":
			searchCalls++
			_, _ = w.Write([]byte(`{"hits":[{"slug":"lithium","title":"Lithium","project_id":"gvQqBUqZ"}]}`))
		default:
			projectCalls++
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := modrinth.New(srv.URL, "modslug-test", time.Second)
	require.NoError(t, err)
	r := newTestResolver(client)

	slug, ok := r.Resolve(context.Background(), "fabric-api", "Fabric API")
	require.True(t, ok)
	assert.Equal(t, "fabric-api", slug)
	assert.Equal(t, 0, searchCalls)

	slug, ok = r.Resolve(context.Background(), "lithium_core", "Lithium")
	require.True(t, ok)
	assert.Equal(t, "lithium", slug)
	assert.Equal(t, 2, projectCalls)
	assert.Equal(t, 1, searchCalls)
}
