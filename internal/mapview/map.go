// Package mapview models the map widget the front end draws on: a map, its
// markers and the info popups anchored to them. The model is what the page
// template hands to the Google Maps JavaScript API.
package mapview

import "html/template"

const EventClick = "click"

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Options struct {
	Zoom   int
	Center LatLng
}

type Label struct {
	Text      string `json:"text"`
	ClassName string `json:"className"`
}

type MarkerOptions struct {
	Position LatLng
	Title    string
	Label    Label
}

// Map is one widget instance bound to a container element.
type Map struct {
	Container string
	Options   Options
	markers   []*Marker
}

func New(container string, opts Options) *Map {
	return &Map{
		Container: container,
		Options:   opts,
	}
}

func (m *Map) AddMarker(opts MarkerOptions) *Marker {
	mk := &Marker{
		MarkerOptions: opts,
		listeners:     map[string][]func(){},
	}
	m.markers = append(m.markers, mk)
	return mk
}

func (m *Map) Markers() []*Marker {
	return m.markers
}

type Marker struct {
	MarkerOptions
	popup     *Popup
	listeners map[string][]func()
}

func (mk *Marker) AddListener(event string, fn func()) {
	mk.listeners[event] = append(mk.listeners[event], fn)
}

// Trigger runs the listeners registered for event, in registration order.
func (mk *Marker) Trigger(event string) {
	for _, fn := range mk.listeners[event] {
		fn()
	}
}

func (mk *Marker) Click() {
	mk.Trigger(EventClick)
}

// Bind associates p with the marker so it travels with it in a Snapshot.
func (mk *Marker) Bind(p *Popup) {
	mk.popup = p
}

func (mk *Marker) Popup() *Popup {
	return mk.popup
}

// Popup is an info window. It is open while anchored to a marker.
type Popup struct {
	Content template.HTML
	anchor  *Marker
}

func NewPopup(content template.HTML) *Popup {
	return &Popup{Content: content}
}

func (p *Popup) Open(anchor *Marker) {
	p.anchor = anchor
}

func (p *Popup) Close() {
	p.anchor = nil
}

func (p *Popup) IsOpen() bool {
	return p.anchor != nil
}

func (p *Popup) Anchor() *Marker {
	return p.anchor
}

type MarkerSnapshot struct {
	Position LatLng        `json:"position"`
	Title    string        `json:"title"`
	Label    Label         `json:"label"`
	Popup    template.HTML `json:"popup,omitempty"`
}

type Snapshot struct {
	Container string           `json:"container"`
	Zoom      int              `json:"zoom"`
	Center    LatLng           `json:"center"`
	Markers   []MarkerSnapshot `json:"markers"`
}

// Snapshot flattens the map into the shape the browser script consumes.
func (m *Map) Snapshot() Snapshot {
	snap := Snapshot{
		Container: m.Container,
		Zoom:      m.Options.Zoom,
		Center:    m.Options.Center,
		Markers:   make([]MarkerSnapshot, 0, len(m.markers)),
	}
	for _, mk := range m.markers {
		ms := MarkerSnapshot{
			Position: mk.Position,
			Title:    mk.Title,
			Label:    mk.Label,
		}
		if mk.popup != nil {
			ms.Popup = mk.popup.Content
		}
		snap.Markers = append(snap.Markers, ms)
	}
	return snap
}
