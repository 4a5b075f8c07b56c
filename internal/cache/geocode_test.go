package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	st "github.com/evanhutnik/scout-service/internal/types"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type countingGeocoder struct {
	calls int
	res   *st.GeoResult
	err   error
}

func (c *countingGeocoder) GeoCode(ctx context.Context, location string) (*st.GeoResult, error) {
	c.calls++
	return c.res, c.err
}

func newCache(tb testing.TB, next Geocoder) (*GeoCache, *miniredis.Miniredis) {
	tb.Helper()
	mr := miniredis.RunT(tb)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tb.Cleanup(func() { _ = rc.Close() })
	return NewGeoCache(next, rc, time.Hour, zap.NewNop().Sugar()), mr
}

func TestGeoCache_SecondLookupHitsRedis(t *testing.T) {
	next := &countingGeocoder{res: &st.GeoResult{Latitude: 1, Longitude: 2, Label: "1 Main St"}}
	gc, mr := newCache(t, next)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := gc.GeoCode(ctx, "Cafe,  Main St")
		if err != nil {
			t.Fatalf("GeoCode error: %v", err)
		}
		if got == nil || got.Label != "1 Main St" {
			t.Fatalf("unexpected result %+v", got)
		}
	}
	if next.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", next.calls)
	}
	if !mr.Exists("geocode:cafe, main st") {
		t.Fatalf("expected normalised key in redis, have %v", mr.Keys())
	}
	if ttl := mr.TTL("geocode:cafe, main st"); ttl != time.Hour {
		t.Fatalf("unexpected ttl %v", ttl)
	}
}

func TestGeoCache_RemembersMisses(t *testing.T) {
	next := &countingGeocoder{}
	gc, _ := newCache(t, next)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := gc.GeoCode(ctx, "Nowhere")
		if err != nil || got != nil {
			t.Fatalf("expected nil miss, got %+v, %v", got, err)
		}
	}
	if next.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", next.calls)
	}
}

func TestGeoCache_ErrorsAreNotCached(t *testing.T) {
	next := &countingGeocoder{err: errors.New("boom")}
	gc, mr := newCache(t, next)

	if _, err := gc.GeoCode(context.Background(), "Somewhere"); err == nil {
		t.Fatalf("expected error")
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("expected empty cache, have %v", mr.Keys())
	}
}

func TestGeoCache_FallsThroughWhenRedisDown(t *testing.T) {
	next := &countingGeocoder{res: &st.GeoResult{Label: "x"}}
	gc, mr := newCache(t, next)
	mr.Close()

	got, err := gc.GeoCode(context.Background(), "Somewhere")
	if err != nil || got == nil {
		t.Fatalf("expected upstream result, got %+v, %v", got, err)
	}
}
