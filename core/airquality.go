package core

import (
	"context"
	"strconv"
)

type AirQualityStatus int

const (
	AirQualityOK AirQualityStatus = iota
	AirQualityNotFound
	AirQualityUnavailable
)

// AirQualityResult is the outcome of a city air-quality lookup.
// Index is only meaningful when Status is AirQualityOK.
type AirQualityResult struct {
	Status AirQualityStatus
	Index  int
}

// Label maps a lookup result to its display value.
func (r AirQualityResult) Label() string {
	switch r.Status {
	case AirQualityOK:
		return strconv.Itoa(r.Index)
	case AirQualityNotFound:
		return "location not found"
	default:
		return "unavailable"
	}
}

// AirQualityService is any service that can look up the air-quality index
// of a city. Implementations never fail: transport errors, timeouts and
// unparseable responses all resolve to AirQualityUnavailable.
type AirQualityService interface {
	CityFeed(ctx context.Context, city string) AirQualityResult
}
