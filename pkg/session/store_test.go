package session

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewMemoryStore(time.Hour)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	if err := m.Save(ctx, &Session{ID: "abc", Authenticated: true}); err != nil {
		t.Fatal(err)
	}
	sess, err := m.Get(ctx, "abc")
	if err != nil || !sess.Authenticated {
		t.Fatalf("expected stored session, got %+v (%v)", sess, err)
	}

	sess.Authenticated = false
	if again, _ := m.Get(ctx, "abc"); !again.Authenticated {
		t.Error("Get must return a copy")
	}

	now = now.Add(time.Hour)
	if _, err := m.Get(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func TestMemoryStoreSweepsPeriodically(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewMemoryStore(time.Minute)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	m.Save(ctx, &Session{ID: "old"})
	now = now.Add(30 * time.Second)
	m.Save(ctx, &Session{ID: "a"})
	now = now.Add(20 * time.Second)
	m.Save(ctx, &Session{ID: "b"})
	if len(m.entries) != 3 {
		t.Fatalf("expected no sweep within the interval, got %d entries", len(m.entries))
	}

	now = now.Add(time.Minute)
	m.Save(ctx, &Session{ID: "c"})
	if _, ok := m.entries["old"]; ok {
		t.Error("expected expired entry to be swept")
	}
	if len(m.entries) != 1 {
		t.Errorf("expected only the new entry, got %d", len(m.entries))
	}
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := NewRedisStore(client, 30*time.Minute)
	ctx := context.Background()

	if _, err := r.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	in := &Session{ID: "tok", Username: "ana", Authenticated: true, CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	if err := r.Save(ctx, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if ttl := mr.TTL(redisKeyPrefix + "tok"); ttl != 30*time.Minute {
		t.Errorf("expected 30m ttl, got %v", ttl)
	}
	out, err := r.Get(ctx, "tok")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if out.ID != in.ID || out.Username != in.Username || !out.Authenticated || !out.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("got %+v, want %+v", out, in)
	}

	mr.FastForward(31 * time.Minute)
	if _, err := r.Get(ctx, "tok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}

	r.Save(ctx, in)
	if err := r.Delete(ctx, "tok"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Get(ctx, "tok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted session, got %v", err)
	}
}

func TestNewRedisClient(t *testing.T) {
	if _, err := NewRedisClient("not a url"); err == nil {
		t.Fatal("expected parse error")
	}
	c, err := NewRedisClient("redis://localhost:6379/2")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if c.Options().DB != 2 {
		t.Errorf("expected db 2, got %d", c.Options().DB)
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(NewMemoryStore(time.Hour))
	ctx := context.Background()

	sess, err := m.Load(ctx, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sess.ID == "" || sess.Authenticated {
		t.Fatalf("expected fresh locked session, got %+v", sess)
	}
	if reloaded, _ := m.Load(ctx, sess.ID); reloaded.ID == sess.ID {
		t.Fatal("a fresh session must not be stored before Save")
	}

	sess.Authenticated = true
	if err := m.Save(ctx, sess); err != nil {
		t.Fatal(err)
	}
	loaded, err := m.Load(ctx, sess.ID)
	if err != nil || !loaded.Authenticated {
		t.Fatalf("expected saved session, got %+v (%v)", loaded, err)
	}

	if err := m.End(ctx, sess); err != nil {
		t.Fatal(err)
	}
	fresh, err := m.Load(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.ID == sess.ID || fresh.Authenticated {
		t.Fatalf("ended session must not come back, got %+v", fresh)
	}
}
