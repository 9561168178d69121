package aqsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/trezcool/agora/core"
)

// waqiService fetches the live air quality index of a city from the
// World Air Quality Index project feed API.
type waqiService struct {
	client  *http.Client
	baseURL string
	token   string
	logger  core.Logger
}

var _ core.AirQualityService = (*waqiService)(nil)

func NewWAQIService(logger core.Logger) core.AirQualityService {
	return newWAQIService(
		core.Conf.AirQuality.BaseURL,
		core.Conf.AirQuality.Token,
		core.Conf.AirQuality.Timeout,
		logger,
	)
}

func newWAQIService(baseURL, token string, timeout time.Duration, logger core.Logger) *waqiService {
	return &waqiService{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		logger:  logger,
	}
}

// data is a raw blob: the API fills it with an error string when
// status is not "ok", it only holds the aqi struct on success.
type waqiFeedResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// CityFeed never fails the caller: any provider error degrades
// to an Unavailable result.
func (svc *waqiService) CityFeed(ctx context.Context, city string) core.AirQualityResult {
	feedURL := fmt.Sprintf("%s/feed/%s/?token=%s", svc.baseURL, url.PathEscape(city), url.QueryEscape(svc.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("air quality: building request for %q: %v", city, err))
		return core.AirQualityResult{Status: core.AirQualityUnavailable}
	}

	res, err := svc.client.Do(req)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("air quality: fetching feed for %q: %v", city, err))
		return core.AirQualityResult{Status: core.AirQualityUnavailable}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		svc.logger.Warn(fmt.Sprintf("air quality: feed for %q: status %d", city, res.StatusCode))
		return core.AirQualityResult{Status: core.AirQualityUnavailable}
	}

	var feed waqiFeedResponse
	if err = json.NewDecoder(res.Body).Decode(&feed); err != nil {
		svc.logger.Warn(fmt.Sprintf("air quality: decoding feed for %q: %v", city, err))
		return core.AirQualityResult{Status: core.AirQualityUnavailable}
	}

	if feed.Status != "ok" {
		// the API reports unknown cities as an application level error
		return core.AirQualityResult{Status: core.AirQualityNotFound}
	}

	var data struct {
		AQI json.Number `json:"aqi"`
	}
	if err = json.Unmarshal(feed.Data, &data); err != nil {
		svc.logger.Warn(fmt.Sprintf("air quality: decoding feed data for %q: %v", city, err))
		return core.AirQualityResult{Status: core.AirQualityUnavailable}
	}

	idx, err := data.AQI.Int64()
	if err != nil {
		// stations occasionally report a non numeric index ("-")
		return core.AirQualityResult{Status: core.AirQualityUnavailable}
	}
	return core.AirQualityResult{Status: core.AirQualityOK, Index: int(idx)}
}
