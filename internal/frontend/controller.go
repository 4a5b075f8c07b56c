// Package frontend is the form-to-map controller: it reads the submitted URL,
// asks the coordinates API for places and draws them on a map.
package frontend

import (
	"context"
	"errors"
	"strings"

	"github.com/evanhutnik/scout-service/internal/mapview"
	t "github.com/evanhutnik/scout-service/internal/types"
	"go.uber.org/zap"
)

var (
	ErrEmptyURL    = errors.New("empty url")
	ErrNoLocations = errors.New("no locations found")
)

// Messages shown in the errorMessage element.
const (
	EmptyURLMessage    = "Please enter a URL"
	NoLocationsMessage = "No locations found"
	GenericMessage     = "An error occurred"
)

type CoordinateSource interface {
	GenerateCoordinates(ctx context.Context, url string) (*t.CoordinateResponse, error)
}

// Controller handles submissions of one page. Overlapping submissions are
// not prevented; the last one to finish owns the map.
type Controller struct {
	api    CoordinateSource
	els    *elements
	logger *zap.SugaredLogger

	current *mapview.Map
}

// NewController binds to doc. It fails when an element the page contract
// requires is missing.
func NewController(doc Document, api CoordinateSource, logger *zap.SugaredLogger) (*Controller, error) {
	els, err := lookup(doc)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Controller{
		api:    api,
		els:    els,
		logger: logger,
	}, nil
}

// Map returns the map drawn by the last successful submission, if any.
func (c *Controller) Map() *mapview.Map {
	return c.current
}

// Submit runs one submission. Every failure is reported in the page and
// also returned.
func (c *Controller) Submit(ctx context.Context) error {
	url := strings.TrimSpace(c.els.input.Value())
	if url == "" {
		c.showError(ErrEmptyURL)
		return ErrEmptyURL
	}

	c.els.form.AddClass(loadingClass)
	c.els.spinner.SetVisible(true)
	c.els.errMsg.SetVisible(false)
	c.els.mapEl.SetVisible(false)
	defer func() {
		c.els.form.RemoveClass(loadingClass)
		c.els.spinner.SetVisible(false)
	}()

	err := c.generate(ctx, url)
	if err != nil {
		c.logger.Warnw(err.Error(), "url", url, "action", "Submit")
		c.showError(err)
		c.els.mapEl.SetVisible(false)
	}
	return err
}

func (c *Controller) generate(ctx context.Context, url string) error {
	resp, err := c.api.GenerateCoordinates(ctx, url)
	if err != nil {
		return err
	}
	if resp == nil || len(resp.Coordinates) == 0 {
		return ErrNoLocations
	}

	c.els.mapEl.SetVisible(true)
	m, err := renderMap(MapID, resp.Coordinates)
	if err != nil {
		return err
	}
	c.current = m
	c.logger.Infow("Rendered map", "url", url, "markers", len(resp.Coordinates), "unresolved", len(resp.NoCoordinates))
	return nil
}

func (c *Controller) showError(err error) {
	c.els.errMsg.SetText(errorMessage(err))
	c.els.errMsg.SetVisible(true)
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyURL):
		return EmptyURLMessage
	case errors.Is(err, ErrNoLocations):
		return NoLocationsMessage
	case err == nil || err.Error() == "":
		return GenericMessage
	}
	return err.Error()
}
