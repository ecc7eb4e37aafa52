package store

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := NewRedis(context.Background(), mr.Addr(), "quest:")
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r, mr
}

func TestRedisGetMissingKey(t *testing.T) {
	r, _ := newTestRedis(t)

	_, err := r.Get(context.Background(), "grades")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisPutAllAndGet(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	err := r.PutAll(ctx, map[string][]byte{
		"grades":  []byte(`{"Fisica":6.5}`),
		"history": []byte(`{"history":[]}`),
	})
	if err != nil {
		t.Fatalf("PutAll: %v", err)
	}

	got, err := r.Get(ctx, "grades")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"Fisica":6.5}` {
		t.Errorf("grades = %s", got)
	}

	if err := r.PutAll(ctx, map[string][]byte{"grades": []byte(`{"Fisica":7}`)}); err != nil {
		t.Fatalf("PutAll overwrite: %v", err)
	}
	got, _ = r.Get(ctx, "grades")
	if string(got) != `{"Fisica":7}` {
		t.Errorf("grades after overwrite = %s", got)
	}
	got, _ = r.Get(ctx, "history")
	if string(got) != `{"history":[]}` {
		t.Errorf("history changed unexpectedly: %s", got)
	}

	// Keys live under the prefix only.
	if v, err := mr.Get("quest:history"); err != nil || v != `{"history":[]}` {
		t.Errorf("prefixed key = %q, %v", v, err)
	}
	if mr.Exists("grades") || mr.Exists("history") {
		t.Error("unprefixed keys written")
	}
}
