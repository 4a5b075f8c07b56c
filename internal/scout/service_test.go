package scout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	st "github.com/evanhutnik/scout-service/internal/types"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	calls int32
	text  string
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.text, f.err
}

type fakeExtractor struct {
	places []string
	err    error
}

func (f *fakeExtractor) Places(ctx context.Context, article string) ([]string, error) {
	return f.places, f.err
}

type fakeGeocoder map[string]*st.GeoResult

func (f fakeGeocoder) GeoCode(ctx context.Context, location string) (*st.GeoResult, error) {
	if location == "Broken, Warsaw, Poland" {
		return nil, errors.New("upstream down")
	}
	return f[location], nil
}

func newTestService(fetcher Fetcher, extractor Extractor, geocoder Geocoder) *Service {
	return New(
		LoggerOption(zap.NewNop().Sugar()),
		FetcherOption(fetcher),
		InitOption(func(ctx context.Context) (Extractor, Geocoder, error) {
			return extractor, geocoder, nil
		}),
	)
}

func post(tb testing.TB, h http.Handler, body string) *httptest.ResponseRecorder {
	tb.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/generate_coordinates", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGenerateCoordinates_Success(t *testing.T) {
	fetcher := &fakeFetcher{text: "article"}
	extractor := &fakeExtractor{places: []string{
		"Cafe A, Warsaw, Poland",
		"Ghost Bar, Warsaw, Poland",
		"Broken, Warsaw, Poland",
		"Cafe B, Warsaw, Poland",
	}}
	geocoder := fakeGeocoder{
		"Cafe A, Warsaw, Poland": {Latitude: 52.1, Longitude: 21.1, Label: "1 Main St, Warsaw"},
		"Cafe B, Warsaw, Poland": {Latitude: 52.2, Longitude: 21.2, Label: "2 Main St, Warsaw"},
	}
	s := newTestService(fetcher, extractor, geocoder)

	rec := post(t, s.Handler(), `{"url":"  https://example.com/best  "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp st.CoordinateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantCoords := []st.Coordinate{
		{Name: "Cafe A", Latitude: 52.1, Longitude: 21.1, Address: "1 Main St, Warsaw"},
		{Name: "Cafe B", Latitude: 52.2, Longitude: 21.2, Address: "2 Main St, Warsaw"},
	}
	if !reflect.DeepEqual(resp.Coordinates, wantCoords) {
		t.Fatalf("coordinates = %+v, want %+v", resp.Coordinates, wantCoords)
	}
	wantMissing := []string{"Ghost Bar, Warsaw, Poland", "Broken, Warsaw, Poland"}
	if !reflect.DeepEqual(resp.NoCoordinates, wantMissing) {
		t.Fatalf("no_coordinates = %v, want %v", resp.NoCoordinates, wantMissing)
	}
}

func TestGenerateCoordinates_EmptyArraysAreSerialised(t *testing.T) {
	s := newTestService(&fakeFetcher{}, &fakeExtractor{}, fakeGeocoder{})

	rec := post(t, s.Handler(), `{"url":"https://example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"coordinates":[],"no_coordinates":[]}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestGenerateCoordinates_EmptyUrl(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := newTestService(fetcher, &fakeExtractor{}, fakeGeocoder{})

	rec := post(t, s.Handler(), `{"url":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body st.ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Detail != "URL is required." {
		t.Fatalf("unexpected detail %q", body.Detail)
	}
	if atomic.LoadInt32(&fetcher.calls) != 0 {
		t.Fatalf("fetcher must not be called")
	}
}

func TestGenerateCoordinates_FetchError(t *testing.T) {
	s := newTestService(&fakeFetcher{err: errors.New("connection refused")}, &fakeExtractor{}, fakeGeocoder{})

	rec := post(t, s.Handler(), `{"url":"https://example.com"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body st.ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Detail != "Error fetching URL: connection refused" {
		t.Fatalf("unexpected detail %q", body.Detail)
	}
}

func TestGenerateCoordinates_ErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		extractor  *fakeExtractor
		wantCode   int
		wantDetail string
	}{
		{
			name:       "body is not json",
			method:     http.MethodPost,
			body:       "not json",
			extractor:  &fakeExtractor{},
			wantCode:   http.StatusBadRequest,
			wantDetail: "Request body must be JSON with a 'url' field.",
		},
		{
			name:       "extractor failure passes through",
			method:     http.MethodPost,
			body:       `{"url":"https://example.com"}`,
			extractor:  &fakeExtractor{err: errors.New("error generating content with gemini: quota exceeded")},
			wantCode:   http.StatusInternalServerError,
			wantDetail: "error generating content with gemini: quota exceeded",
		},
		{
			name:       "get is not allowed",
			method:     http.MethodGet,
			extractor:  &fakeExtractor{},
			wantCode:   http.StatusMethodNotAllowed,
			wantDetail: "Method Not Allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeFetcher{text: "article"}
			s := newTestService(fetcher, tt.extractor, fakeGeocoder{})

			req := httptest.NewRequest(tt.method, "/api/generate_coordinates", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			var body st.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Detail != tt.wantDetail {
				t.Fatalf("unexpected detail %q", body.Detail)
			}
			if tt.wantCode != http.StatusInternalServerError && atomic.LoadInt32(&fetcher.calls) != 0 {
				t.Fatalf("fetcher must not be called")
			}
		})
	}
}

func TestInitialize_RetriesAfterFailure(t *testing.T) {
	var attempts int32
	s := New(
		LoggerOption(zap.NewNop().Sugar()),
		FetcherOption(&fakeFetcher{}),
		InitOption(func(ctx context.Context) (Extractor, Geocoder, error) {
			if atomic.AddInt32(&attempts, 1) == 1 {
				return nil, nil, errors.New("GENAI key missing")
			}
			return &fakeExtractor{}, fakeGeocoder{}, nil
		}),
	)

	rec := post(t, s.Handler(), `{"url":"https://example.com"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on failed init, got %d", rec.Code)
	}
	rec = post(t, s.Handler(), `{"url":"https://example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after re-init, got %d", rec.Code)
	}
	post(t, s.Handler(), `{"url":"https://example.com"}`)
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Fatalf("expected 2 init attempts, got %d", got)
	}
}

func TestHealthAndCors(t *testing.T) {
	s := newTestService(&fakeFetcher{}, &fakeExtractor{}, fakeGeocoder{})
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"status":"healthy"}` {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/generate_coordinates", nil)
	req.Header.Set("Origin", "https://scout.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://scout.example" {
		t.Fatalf("unexpected allow origin %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type" {
		t.Fatalf("unexpected allow headers %q", got)
	}
}

func TestPlaceName(t *testing.T) {
	if got := placeName("Cafe A, Warsaw, Poland"); got != "Cafe A" {
		t.Fatalf("placeName = %q", got)
	}
	if got := placeName("Louvre"); got != "Louvre" {
		t.Fatalf("placeName = %q", got)
	}
}
