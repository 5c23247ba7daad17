package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestImageCacheCaches(t *testing.T) {
	loader := &countingImageLoader{images: map[string][]byte{"a.jpg": []byte("jpeg")}}
	cache := NewImageCache(loader, time.Minute)

	for i := 0; i < 3; i++ {
		data, err := cache.LoadImage(context.Background(), "a.jpg")
		if err != nil {
			t.Fatalf("load image: %v", err)
		}
		if string(data) != "jpeg" {
			t.Fatalf("unexpected data %q", data)
		}
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}
}

func TestImageCacheExpires(t *testing.T) {
	loader := &countingImageLoader{images: map[string][]byte{"a.jpg": []byte("jpeg")}}
	cache := NewImageCache(loader, time.Minute)
	now := time.Now()
	cache.clock = func() time.Time { return now }

	_, _ = cache.LoadImage(context.Background(), "a.jpg")
	now = now.Add(2 * time.Minute)
	_, _ = cache.LoadImage(context.Background(), "a.jpg")

	if loader.count() != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.count())
	}
}

func TestImageCacheDoesNotCacheFailures(t *testing.T) {
	loader := &countingImageLoader{}
	cache := NewImageCache(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cache.LoadImage(context.Background(), "missing.jpg"); !errors.Is(err, errNoImage) {
			t.Fatalf("expected missing image error, got %v", err)
		}
	}
	if loader.count() != 2 {
		t.Fatalf("expected each failure to hit the loader, got %d", loader.count())
	}
}

var errNoImage = errors.New("no such image")

type countingImageLoader struct {
	mu     sync.Mutex
	calls  int
	images map[string][]byte
}

func (l *countingImageLoader) LoadImage(_ context.Context, name string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if data, ok := l.images[name]; ok {
		return data, nil
	}
	return nil, errNoImage
}

func (l *countingImageLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}
