package types

import "encoding/json"

type URLRequest struct {
	Url string `json:"url"`
}

type Coordinate struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

type CoordinateResponse struct {
	Coordinates   []Coordinate `json:"coordinates"`
	NoCoordinates []string     `json:"no_coordinates"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// GeoResult is a single forward geocoding hit.
type GeoResult struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label"`
}

// External Objects

type PSForwardResponse struct {
	Data []json.RawMessage `json:"data"`
}

type PSLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label"`
	Name      string  `json:"name"`
	Locality  string  `json:"locality"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
}
