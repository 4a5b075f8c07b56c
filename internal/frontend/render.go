package frontend

import (
	"github.com/evanhutnik/scout-service/internal/mapview"
	t "github.com/evanhutnik/scout-service/internal/types"
)

const (
	defaultZoom      = 13
	markerLabelClass = "marker-label"
)

// renderMap builds a fresh map centred on the first coordinate with one
// marker and popup per coordinate. At most one popup is open at a time.
func renderMap(container string, coords []t.Coordinate) (*mapview.Map, error) {
	first := coords[0]
	m := mapview.New(container, mapview.Options{
		Zoom:   defaultZoom,
		Center: mapview.LatLng{Lat: first.Latitude, Lng: first.Longitude},
	})

	var current *mapview.Popup
	for _, coord := range coords {
		pos := mapview.LatLng{Lat: coord.Latitude, Lng: coord.Longitude}

		content, err := mapview.PopupContent(coord.Name, coord.Address, pos)
		if err != nil {
			return nil, err
		}
		popup := mapview.NewPopup(content)

		marker := m.AddMarker(mapview.MarkerOptions{
			Position: pos,
			Title:    coord.Name,
			Label: mapview.Label{
				Text:      coord.Name,
				ClassName: markerLabelClass,
			},
		})
		marker.Bind(popup)

		marker.AddListener(mapview.EventClick, func() {
			if current != nil {
				current.Close()
			}
			popup.Open(marker)
			current = popup
		})
	}
	return m, nil
}
