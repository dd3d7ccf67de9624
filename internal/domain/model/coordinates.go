package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Coordinates is a WGS 84 position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks that both components are within their geographic range.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return &ValidationError{Field: "latitude", Message: "Latitude must be between -90 and 90."}
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return &ValidationError{Field: "longitude", Message: "Longitude must be between -180 and 180."}
	}
	return nil
}

// String formats the coordinates to four decimal places for display.
func (c Coordinates) String() string {
	return fmt.Sprintf("Lat %.4f, Lon %.4f", c.Latitude, c.Longitude)
}

// ParseCoordinates parses manually entered latitude and longitude strings.
// Both empty means no coordinates and returns (nil, nil).
func ParseCoordinates(lat, lon string) (*Coordinates, error) {
	lat = strings.TrimSpace(lat)
	lon = strings.TrimSpace(lon)
	if lat == "" && lon == "" {
		return nil, nil
	}
	if lat == "" || lon == "" {
		return nil, &ValidationError{Field: "location", Message: "Enter both latitude and longitude, or neither."}
	}

	latV, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, &ValidationError{Field: "latitude", Message: "Latitude must be a number."}
	}
	lonV, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return nil, &ValidationError{Field: "longitude", Message: "Longitude must be a number."}
	}

	c := Coordinates{Latitude: latV, Longitude: lonV}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// PositionOptions tunes a single geolocation acquisition.
type PositionOptions struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}
