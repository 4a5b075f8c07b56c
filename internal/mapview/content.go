package mapview

import (
	"bytes"
	"html/template"
	"strconv"
)

const searchBaseUrl = "https://www.google.com/maps/search/"

var popupTemplate = template.Must(template.New("popup").Parse(`<div class="marker-info">
  <h3>{{.Name}}</h3>
  <p>{{.Address}}</p>
  <a href="{{.SearchUrl}}" target="_blank" rel="noopener" class="view-on-maps">View on Google Maps</a>
</div>`))

// SearchUrl links to the Google Maps search page for pos.
func SearchUrl(pos LatLng) string {
	return searchBaseUrl + "?api=1&query=" + formatFloat(pos.Lat) + "," + formatFloat(pos.Lng)
}

// PopupContent renders the info window body for a named place. Name and
// address are escaped.
func PopupContent(name, address string, pos LatLng) (template.HTML, error) {
	var buf bytes.Buffer
	err := popupTemplate.Execute(&buf, struct {
		Name      string
		Address   string
		SearchUrl string
	}{
		Name:      name,
		Address:   address,
		SearchUrl: SearchUrl(pos),
	})
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
