package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/evanhutnik/scout-service/internal/frontend"
	"github.com/evanhutnik/scout-service/internal/mapview"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

type ServerOption func(*Server)

func MapsKeyOption(key string) ServerOption {
	return func(s *Server) {
		s.mapsKey = key
	}
}

func LoggerOption(logger *zap.SugaredLogger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// Server serves the form page and runs one controller per submission.
type Server struct {
	api     frontend.CoordinateSource
	mapsKey string
	index   *template.Template
	logger  *zap.SugaredLogger
}

type ElementView struct {
	Visible bool
	Text    string
	Value   string
	Classes string
}

type PageData struct {
	Form     ElementView
	Input    ElementView
	Spinner  ElementView
	Error    ElementView
	Map      ElementView
	Snapshot *mapview.Snapshot
	MapsKey  string
}

func NewServer(api frontend.CoordinateSource, opts ...ServerOption) (*Server, error) {
	index, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	s := &Server{
		api:   api,
		index: index,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		baseLogger, _ := zap.NewProduction()
		s.logger = baseLogger.Sugar()
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.IndexHandler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})
	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
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

	s.logger.Infow("Listening", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) IndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	page := frontend.NewPage()
	var m *mapview.Map

	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		page.Element(frontend.UrlInputID).SetValue(r.PostForm.Get("url"))

		logger := s.logger.With("request_id", uuid.NewString())
		ctrl, err := frontend.NewController(page, s.api, logger)
		if err != nil {
			logger.Errorw(err.Error(), "action", "NewController")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		_ = ctrl.Submit(r.Context())
		m = ctrl.Map()
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	data := PageData{
		Form:    view(page.Element(frontend.FormID)),
		Input:   view(page.Element(frontend.UrlInputID)),
		Spinner: view(page.Element(frontend.LoadingSpinnerID)),
		Error:   view(page.Element(frontend.ErrorMessageID)),
		Map:     view(page.Element(frontend.MapID)),
		MapsKey: s.mapsKey,
	}
	if m != nil && data.Map.Visible {
		snap := m.Snapshot()
		data.Snapshot = &snap
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.index.Execute(w, data); err != nil {
		s.logger.Errorw(err.Error(), "action", "renderIndex")
	}
}

func view(el *frontend.PageElement) ElementView {
	return ElementView{
		Visible: el.Visible(),
		Text:    el.Text(),
		Value:   el.Value(),
		Classes: strings.Join(el.Classes(), " "),
	}
}
