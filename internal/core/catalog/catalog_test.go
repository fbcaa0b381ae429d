package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-finder/internal/core/cache"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"
)

const upstreamBody = `{"recipes": [
	{"id": 1, "name": "Classic Margherita Pizza", "cuisine": "Italian", "tags": ["Pizza", "Italian"], "cookTimeMinutes": 15},
	{"id": 2, "name": "Vegetarian Stir-Fry", "cuisine": "Asian", "tags": ["Vegetarian", "Stir-fry"], "cookTimeMinutes": 20},
	{"id": 3, "name": "Chicken Alfredo Pasta", "cuisine": "Italian", "tags": ["Pasta", "Chicken"], "cookTimeMinutes": 25},
	{"id": 4, "name": "Beef 100% Burger", "cuisine": "American", "tags": ["Burger"]}
], "total": 4, "skip": 0, "limit": 4}`

type stubUpstream struct {
	recipes []recipe.Recipe
	err     error
	probe   error
}

func (s *stubUpstream) Fetch(context.Context) ([]recipe.Recipe, error) { return s.recipes, s.err }
func (s *stubUpstream) Probe(context.Context) error                   { return s.probe }

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRecipes(t *testing.T) []recipe.Recipe {
	t.Helper()
	data, err := common.DecodeAny([]byte(upstreamBody))
	require.NoError(t, err)
	return recipe.NormalizeMany(data)
}

func newTestService(t *testing.T, up Upstream, c cache.Store) *Service {
	t.Helper()
	return NewService(openTestStore(t), up, c)
}

func recipeNames(rs []recipe.Recipe) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func TestStore_SearchMatchesNameCuisineAndTags(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	n, err := s.ReplaceAll(ctx, sampleRecipes(t))
	require.NoError(t, err)
	require.Equal(t, 4, n)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Classic Margherita Pizza", "Vegetarian Stir-Fry", "Chicken Alfredo Pasta", "Beef 100% Burger"}},
		{"PIZZA", []string{"Classic Margherita Pizza"}},
		{"italian", []string{"Classic Margherita Pizza", "Chicken Alfredo Pasta"}},
		{"chicken", []string{"Chicken Alfredo Pasta"}},
		{"stir", []string{"Vegetarian Stir-Fry"}},
		{"100%", []string{"Beef 100% Burger"}},
		{"%", []string{"Beef 100% Burger"}},
		{"sushi", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.Search(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, recipeNames(got))
		})
	}
}

func TestStore_RoundTripKeepsCanonicalFields(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	_, err := s.ReplaceAll(ctx, sampleRecipes(t))
	require.NoError(t, err)

	r, err := s.Get(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "Chicken Alfredo Pasta", r.Name)
	assert.Equal(t, recipe.Some(25.0), r.CookTimeMinutes)
	assert.Equal(t, []string{"Pasta", "Chicken"}, r.Tags)
	assert.False(t, r.Rating.IsSet())

	_, err = s.Get(ctx, "99")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestStore_ReplaceAllAssignsMissingIDs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	n, err := s.ReplaceAll(ctx, recipe.NormalizeMany([]any{
		map[string]any{"name": "first"},
		map[string]any{"id": "x", "name": "second"},
		map[string]any{"id": "x", "name": "duplicate"},
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	r, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "first", r.Name)

	r, err = s.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "second", r.Name)
}

func TestStore_Page(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	_, err := s.ReplaceAll(ctx, sampleRecipes(t))
	require.NoError(t, err)

	content, total, err := s.Page(ctx, "", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, []string{"Chicken Alfredo Pasta", "Beef 100% Burger"}, recipeNames(content))
}

func TestService_LoadAndQuery(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &stubUpstream{recipes: sampleRecipes(t)}, nil)

	n, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	list, err := svc.List(ctx, "  italian ")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	page, err := svc.Page(ctx, "", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, PageResult{Content: page.Content, Page: 1, Size: 3, TotalElements: 4, TotalPages: 2}, page)
	assert.Len(t, page.Content, 1)

	_, err = svc.Get(ctx, "404")
	var ce *common.CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusNotFound, ce.Status)
	assert.Equal(t, "Recipe not found with id: 404", ce.Message)
}

func TestService_PageClampsBounds(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &stubUpstream{recipes: sampleRecipes(t)}, nil)
	_, err := svc.Load(ctx)
	require.NoError(t, err)

	page, err := svc.Page(ctx, "", -1, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Page)
	assert.Len(t, page.Content, 3)

	page, err = svc.Page(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Size)
	assert.Equal(t, 4, page.TotalPages)
	assert.Equal(t, []string{"Classic Margherita Pizza"}, recipeNames(page.Content))
}

func TestService_LoadKeepsExistingOnEmptyOrFailure(t *testing.T) {
	ctx := context.Background()
	up := &stubUpstream{recipes: sampleRecipes(t)}
	svc := newTestService(t, up, nil)
	_, err := svc.Load(ctx)
	require.NoError(t, err)

	up.recipes = nil
	n, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	up.err = errors.New("boom")
	n, err = svc.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestService_CacheEvictedOnLoad(t *testing.T) {
	ctx := context.Background()
	store := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 100, TTL: time.Minute, CleanupInterval: time.Hour})
	t.Cleanup(func() { _ = store.Close() })

	up := &stubUpstream{recipes: sampleRecipes(t)}
	svc := newTestService(t, up, store)
	_, err := svc.Load(ctx)
	require.NoError(t, err)

	list, err := svc.List(ctx, "pizza")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, store.Len())

	// 第二次查詢由快取回應
	list, err = svc.List(ctx, "PIZZA")
	require.NoError(t, err)
	assert.Equal(t, "Classic Margherita Pizza", list[0].Name)
	assert.Equal(t, int64(1), store.GetStats()["hits"])

	up.recipes = recipe.NormalizeMany([]any{map[string]any{"id": 9, "name": "Pizza Bianca"}})
	_, err = svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())

	list, err = svc.List(ctx, "pizza")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pizza Bianca"}, recipeNames(list))
}

func TestLoader_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(upstreamBody))
	}))
	t.Cleanup(ts.Close)

	l := NewLoader(config.UpstreamConfig{URL: ts.URL, Timeout: time.Second, RetryMaxAttempts: 3, RetryDelay: 10 * time.Millisecond})
	recipes, err := l.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, recipes, 4)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestLoader_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	l := NewLoader(config.UpstreamConfig{URL: ts.URL, Timeout: time.Second, RetryMaxAttempts: 2, RetryDelay: 10 * time.Millisecond})
	_, err := l.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	assert.Error(t, l.Probe(context.Background()))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestLoader_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(ts.Close)

	l := NewLoader(config.UpstreamConfig{URL: ts.URL, Timeout: time.Second, RetryMaxAttempts: 3, RetryDelay: 10 * time.Millisecond})
	_, err := l.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
