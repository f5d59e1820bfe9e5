package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/vrtour/pkg/cache"
	"github.com/matzehuels/vrtour/pkg/config"
)

func TestCacheDir(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)

	dir, err := c.cacheDir()
	if err != nil {
		t.Skipf("no user cache dir: %v", err)
	}
	if filepath.Base(dir) != appName {
		t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
	}

	c.Config.Cache.Dir = "/tmp/tours"
	if dir, _ := c.cacheDir(); dir != "/tmp/tours" {
		t.Errorf("cacheDir() = %q, want the configured dir", dir)
	}
}

func TestCacheLocation(t *testing.T) {
	tests := []struct {
		name  string
		cache config.Cache
		want  string
	}{
		{"none", config.Cache{Backend: config.CacheNone}, "none"},
		{"redis", config.Cache{Backend: config.CacheRedis, RedisAddr: "localhost:6379", RedisDB: 2}, "redis://localhost:6379/2"},
		{"file", config.Cache{Backend: config.CacheFile, Dir: "/var/cache/vrtour"}, "/var/cache/vrtour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&bytes.Buffer{}, LogInfo)
			c.Config.Cache = tt.cache
			if got := c.cacheLocation(); got != tt.want {
				t.Errorf("cacheLocation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	c := New(&bytes.Buffer{}, LogInfo)
	c.Config.Cache = config.Cache{Backend: config.CacheFile, Dir: t.TempDir()}

	ch, err := c.newCache(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	defer ch.Close()
	if _, ok := ch.(*cache.FileCache); !ok {
		t.Errorf("newCache() = %T, want *cache.FileCache", ch)
	}

	off, err := c.newCache(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := off.(*cache.NullCache); !ok {
		t.Errorf("newCache(noCache) = %T, want *cache.NullCache", off)
	}
}

func TestCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(ctx, "manifest:example.com:/house.json", []byte("{}"), time.Hour); err != nil {
		t.Fatal(err)
	}

	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	cfgPath := filepath.Join(t.TempDir(), config.FileName)
	if err := os.WriteFile(cfgPath, []byte("[cache]\ndir = \""+filepath.ToSlash(dir)+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	root.SetArgs([]string{"--config", cfgPath, "cache", "clear"})
	if err := root.ExecuteContext(ctx); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	if _, hit, _ := fc.Get(ctx, "manifest:example.com:/house.json"); hit {
		t.Error("entry survived cache clear")
	}
}
