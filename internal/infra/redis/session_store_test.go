package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreMarksPresence(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	session := store.GetOrCreate("42")
	if !mr.Exists("pdd:session:42") {
		t.Fatalf("expected redis key to be set")
	}
	if got, ok := store.Get("42"); !ok || got != session {
		t.Fatalf("expected the same session back")
	}

	_ = store.GetOrCreate("43")
	active, err := store.Active(context.Background())
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active != 2 {
		t.Fatalf("expected 2 active users, got %d", active)
	}

	mr.FastForward(2 * time.Minute)
	if mr.Exists("pdd:session:42") {
		t.Fatalf("expected presence key to expire")
	}
	if _, ok := store.Get("42"); !ok {
		t.Fatalf("expected session to outlive its presence key")
	}
	if !mr.Exists("pdd:session:42") {
		t.Fatalf("expected lookup to refresh presence")
	}
}
