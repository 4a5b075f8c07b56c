package scout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/evanhutnik/scout-service/internal/cache"
	"github.com/evanhutnik/scout-service/internal/gemini"
	"github.com/evanhutnik/scout-service/internal/page"
	ps "github.com/evanhutnik/scout-service/internal/positionstack"
	t "github.com/evanhutnik/scout-service/internal/types"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultGeocodeConcurrency = 4

type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type Extractor interface {
	Places(ctx context.Context, article string) ([]string, error)
}

type Geocoder interface {
	GeoCode(ctx context.Context, location string) (*t.GeoResult, error)
}

// InitFunc builds the upstream clients. It is called lazily and again after a failure.
type InitFunc func(ctx context.Context) (Extractor, Geocoder, error)

type CodeError struct {
	code int
	msg  string
}

func (c CodeError) Error() string {
	return c.msg
}

func (c CodeError) Code() int {
	return c.code
}

type Option func(*Service)

func FetcherOption(f Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

func InitOption(fn InitFunc) Option {
	return func(s *Service) {
		s.initFn = fn
	}
}

func LoggerOption(logger *zap.SugaredLogger) Option {
	return func(s *Service) {
		s.Logger = logger
	}
}

func GeocodeConcurrencyOption(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.geocodeConcurrency = n
		}
	}
}

type Service struct {
	fetcher            Fetcher
	initFn             InitFunc
	geocodeConcurrency int

	mu          sync.Mutex
	extractor   Extractor
	geocoder    Geocoder
	initialized bool

	Logger *zap.SugaredLogger
}

func New(opts ...Option) *Service {
	s := &Service{
		geocodeConcurrency: defaultGeocodeConcurrency,
	}
	s.initFn = s.clientsFromEnv

	for _, opt := range opts {
		opt(s)
	}

	if s.Logger == nil {
		baseLogger, _ := zap.NewProduction()
		s.Logger = baseLogger.Sugar()
	}
	if s.fetcher == nil {
		s.fetcher = page.New()
	}
	return s
}

// clientsFromEnv builds the Gemini extractor and the positionstack geocoder,
// fronted by a Redis cache unless disable_redis is set.
func (s *Service) clientsFromEnv(ctx context.Context) (Extractor, Geocoder, error) {
	extractor, err := gemini.New(ctx,
		gemini.ApiKeyOption(strings.TrimSpace(os.Getenv("genai_apikey"))),
		gemini.ModelOption(os.Getenv("genai_model")),
	)
	if err != nil {
		return nil, nil, err
	}
	s.Logger.Info("Initialized Gemini client")

	apiKey := strings.TrimSpace(os.Getenv("positionstack_apikey"))
	if apiKey == "" {
		return nil, nil, errors.New("positionstack_apikey not found")
	}
	baseUrl := os.Getenv("positionstack_baseurl")
	if baseUrl == "" {
		baseUrl = "http://api.positionstack.com/v1"
	}
	rps, _ := strconv.ParseFloat(os.Getenv("positionstack_rps"), 64)

	var geocoder Geocoder = ps.New(
		ps.ApiKeyOption(apiKey),
		ps.BaseUrlOption(baseUrl),
		ps.RateLimitOption(rps),
	)
	s.Logger.Info("Initialized positionstack client")

	disableRedis, _ := strconv.ParseBool(os.Getenv("disable_redis"))
	if !disableRedis {
		ttl, err := time.ParseDuration(os.Getenv("geocode_cache_ttl"))
		if err != nil {
			ttl = 7 * 24 * time.Hour
		}
		rc := redis.NewClient(&redis.Options{
			Addr: os.Getenv("redis_address"),
		})
		geocoder = cache.NewGeoCache(geocoder, rc, ttl, s.Logger)
		s.Logger.Infow("Geocode cache enabled", "redis_address", os.Getenv("redis_address"), "ttl", ttl.String())
	}

	return extractor, geocoder, nil
}

// Initialize builds the upstream clients if that has not happened yet. On
// failure nothing is kept so the next call starts over.
func (s *Service) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	extractor, geocoder, err := s.initFn(ctx)
	if err != nil {
		s.Logger.Errorw("Error initializing APIs", "error", err.Error())
		s.extractor, s.geocoder, s.initialized = nil, nil, false
		return err
	}
	s.extractor, s.geocoder, s.initialized = extractor, geocoder, true
	s.Logger.Info("All API clients successfully initialized")
	return nil
}

func (s *Service) clients() (Extractor, Geocoder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extractor, s.geocoder
}

func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.HealthHandler)
	mux.HandleFunc("/api/generate_coordinates", s.GenerateCoordinatesHandler)
	return cors(mux)
}

// Start serves until ctx is cancelled.
func (s *Service) Start(ctx context.Context, addr string) error {
	if err := s.Initialize(ctx); err != nil {
		s.Logger.Warnw("Failed to initialize APIs during startup", "error", err.Error())
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.Logger.Infow("Listening", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, CodeError{code: http.StatusMethodNotAllowed, msg: "Method Not Allowed"})
		return
	}
	s.Logger.Info("Health check endpoint called")
	s.writeJSON(w, http.StatusOK, t.HealthResponse{Status: "healthy"})
}

func (s *Service) GenerateCoordinatesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, CodeError{code: http.StatusMethodNotAllowed, msg: "Method Not Allowed"})
		return
	}

	logger := s.Logger.With("request_id", uuid.NewString())
	resp, err := s.GenerateCoordinates(r.Context(), logger, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Service) GenerateCoordinates(ctx context.Context, logger *zap.SugaredLogger, r *http.Request) (*t.CoordinateResponse, error) {
	start := time.Now()

	rawUrl, err := s.parseRequest(r)
	if err != nil {
		logger.Errorw(err.Error(), "action", "parseRequest")
		return nil, err
	}
	logger = logger.With("url", rawUrl)
	logger.Info("Starting processing URL")

	if err := s.Initialize(ctx); err != nil {
		return nil, CodeError{code: http.StatusInternalServerError, msg: err.Error()}
	}
	extractor, geocoder := s.clients()

	logger.Info("Fetching URL content...")
	article, err := s.fetcher.Fetch(ctx, rawUrl)
	if err != nil {
		logger.Errorw("URL fetch error", "error", err.Error(), "elapsed", time.Since(start).String())
		return nil, CodeError{code: http.StatusInternalServerError, msg: fmt.Sprintf("Error fetching URL: %v", err)}
	}
	logger.Infow("URL fetch completed", "elapsed", time.Since(start).String())

	locations, err := extractor.Places(ctx, article)
	if err != nil {
		logger.Errorw("Processing error", "error", err.Error(), "elapsed", time.Since(start).String())
		return nil, CodeError{code: http.StatusInternalServerError, msg: err.Error()}
	}
	logger.Infow("AI response received", "locations", len(locations), "elapsed", time.Since(start).String())

	resp := s.geoCodeAll(ctx, logger, geocoder, locations)
	logger.Infow("Total processing completed",
		"coordinates", len(resp.Coordinates), "no_coordinates", len(resp.NoCoordinates),
		"elapsed", time.Since(start).String())
	return resp, nil
}

func (s *Service) parseRequest(r *http.Request) (string, error) {
	var req t.URLRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		return "", CodeError{code: http.StatusBadRequest, msg: "Request body must be JSON with a 'url' field."}
	}
	rawUrl := strings.TrimSpace(req.Url)
	if rawUrl == "" {
		return "", CodeError{code: http.StatusBadRequest, msg: "URL is required."}
	}
	return rawUrl, nil
}

type geoOutcome struct {
	coord *t.Coordinate
}

// geoCodeAll resolves every location, keeping input order. Misses and
// errors both end up in NoCoordinates.
func (s *Service) geoCodeAll(ctx context.Context, logger *zap.SugaredLogger, geocoder Geocoder, locations []string) *t.CoordinateResponse {
	outcomes := make([]geoOutcome, len(locations))

	g := new(errgroup.Group)
	g.SetLimit(s.geocodeConcurrency)
	for i, loc := range locations {
		g.Go(func() error {
			res, err := geocoder.GeoCode(ctx, loc)
			if err != nil {
				logger.Errorw(err.Error(), "location", loc, "action", "GeoCode")
				return nil
			} else if res == nil {
				logger.Warnw("No geocoding results", "location", loc, "action", "GeoCode")
				return nil
			}
			outcomes[i].coord = &t.Coordinate{
				Name:      placeName(loc),
				Latitude:  res.Latitude,
				Longitude: res.Longitude,
				Address:   res.Label,
			}
			return nil
		})
	}
	_ = g.Wait()

	resp := &t.CoordinateResponse{
		Coordinates:   []t.Coordinate{},
		NoCoordinates: []string{},
	}
	for i, outcome := range outcomes {
		if outcome.coord == nil {
			resp.NoCoordinates = append(resp.NoCoordinates, locations[i])
			continue
		}
		resp.Coordinates = append(resp.Coordinates, *outcome.coord)
	}
	return resp
}

// placeName is the part of "Name, City, Country" before the first comma.
func placeName(location string) string {
	return strings.TrimSpace(strings.SplitN(location, ",", 2)[0])
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	var codeErr CodeError
	if errors.As(err, &codeErr) {
		s.writeJSON(w, codeErr.code, t.ErrorResponse{Detail: codeErr.Error()})
		return
	}
	s.writeJSON(w, http.StatusInternalServerError, t.ErrorResponse{Detail: "Internal server error"})
}

func (s *Service) writeJSON(w http.ResponseWriter, code int, body interface{}) {
	bodyBytes, _ := json.Marshal(body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(bodyBytes)
}
