package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchDeliversReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"api_key": "gsk_old"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got := make(chan *Config, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		Watch(ctx, path, nil, func(cfg *Config) {
			select {
			case got <- cfg:
			default:
			}
		})
	}()

	// Give the watcher a moment to arm before rewriting.
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{"api_key": "gsk_new"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-got:
		if cfg.APIKey != "gsk_new" {
			t.Errorf("reloaded key = %q, want gsk_new", cfg.APIKey)
		}
	case <-ctx.Done():
		t.Fatal("no reload delivered before timeout")
	}

	cancel()
	<-done
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	os.WriteFile(path, []byte(`{}`), 0o600)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got := make(chan *Config, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		Watch(ctx, path, nil, func(cfg *Config) {
			select {
			case got <- cfg:
			default:
			}
		})
	}()

	time.Sleep(200 * time.Millisecond)
	os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600)

	select {
	case <-got:
		t.Error("reload fired for an unrelated file")
	case <-ctx.Done():
	}
	<-done
}
