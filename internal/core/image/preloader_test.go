package image

import (
	"bytes"
	"context"
	"fmt"
	stdimage "image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-finder/internal/core/cache"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func newImageServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	img := pngBytes(t, 4, 3)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		switch r.URL.Path {
		case "/broken.png":
			_, _ = w.Write([]byte("not an image"))
		case "/missing.png":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(img)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testConfig() config.PreloadConfig {
	return config.PreloadConfig{Enabled: true, Count: 2, MaxSizeBytes: 1 << 20, Timeout: 2 * time.Second}
}

func withImage(url string) recipe.Recipe {
	return recipe.NormalizeOne(recipe.RawRecipe{"name": "r", "image": url})
}

func TestPreloader_WarmsFirstN(t *testing.T) {
	var hits int32
	ts := newImageServer(t, &hits)
	p := NewPreloader(testConfig(), nil)

	p.Preload([]recipe.Recipe{
		withImage(ts.URL + "/a.png"),
		withImage(ts.URL + "/b.png"),
		withImage(ts.URL + "/c.png"),
	})
	p.Wait()

	info, ok := p.Warmed(ts.URL + "/a.png")
	require.True(t, ok)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, 4, info.Width)
	assert.Equal(t, 3, info.Height)

	_, ok = p.Warmed(ts.URL + "/b.png")
	assert.True(t, ok)
	_, ok = p.Warmed(ts.URL + "/c.png")
	assert.False(t, ok)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestPreloader_SkipsWarmedAndMissingImages(t *testing.T) {
	var hits int32
	ts := newImageServer(t, &hits)
	p := NewPreloader(testConfig(), nil)

	list := []recipe.Recipe{withImage(ts.URL + "/a.png"), recipe.NormalizeOne(nil)}
	p.Preload(list)
	p.Wait()
	p.Preload(list)
	p.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestPreloader_FailuresAreIgnored(t *testing.T) {
	var hits int32
	ts := newImageServer(t, &hits)
	p := NewPreloader(testConfig(), nil)

	p.Preload([]recipe.Recipe{withImage(ts.URL + "/broken.png"), withImage(ts.URL + "/missing.png")})
	p.Wait()

	_, ok := p.Warmed(ts.URL + "/broken.png")
	assert.False(t, ok)
	_, ok = p.Warmed(ts.URL + "/missing.png")
	assert.False(t, ok)
}

func TestPreloader_FetchErrors(t *testing.T) {
	var hits int32
	ts := newImageServer(t, &hits)
	cfg := testConfig()
	cfg.MaxSizeBytes = 10
	p := NewPreloader(cfg, nil)

	_, err := p.Fetch(context.Background(), ts.URL+"/a.png")
	assert.ErrorContains(t, err, "exceeds maximum limit")

	_, err = p.Fetch(context.Background(), ts.URL+"/missing.png")
	assert.ErrorContains(t, err, fmt.Sprintf("status code %d", http.StatusNotFound))
}

func TestPreloader_UsesCache(t *testing.T) {
	var hits int32
	ts := newImageServer(t, &hits)
	store := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute, CleanupInterval: time.Hour})
	t.Cleanup(func() { _ = store.Close() })

	url := ts.URL + "/a.png"
	_, err := NewPreloader(testConfig(), store).Fetch(context.Background(), url)
	require.NoError(t, err)

	// 新的預載器直接從快取讀取
	info, err := NewPreloader(testConfig(), store).Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestNewPreloader_DefaultCount(t *testing.T) {
	p := NewPreloader(config.PreloadConfig{}, nil)
	assert.Equal(t, DefaultCount, p.count)
}
