package aqsvc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/agora/core"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func Test_waqiService_CityFeed(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    core.AirQualityResult
	}{
		{
			name: "ok",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/feed/Paris/", r.URL.Path)
				assert.Equal(t, "t0k3n", r.URL.Query().Get("token"))
				_, _ = w.Write([]byte(`{"status":"ok","data":{"aqi":57}}`))
			},
			want: core.AirQualityResult{Status: core.AirQualityOK, Index: 57},
		},
		{
			name: "unknown station",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"error","data":"Unknown station"}`))
			},
			want: core.AirQualityResult{Status: core.AirQualityNotFound},
		},
		{
			name: "non numeric index",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"ok","data":{"aqi":"-"}}`))
			},
			want: core.AirQualityResult{Status: core.AirQualityUnavailable},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			want: core.AirQualityResult{Status: core.AirQualityUnavailable},
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>nope</html>`))
			},
			want: core.AirQualityResult{Status: core.AirQualityUnavailable},
		},
		{
			name: "slow upstream",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(100 * time.Millisecond)
				_, _ = w.Write([]byte(`{"status":"ok","data":{"aqi":57}}`))
			},
			want: core.AirQualityResult{Status: core.AirQualityUnavailable},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			svc := newWAQIService(srv.URL, "t0k3n", 50*time.Millisecond, nopLogger{})
			got := svc.CityFeed(context.Background(), "Paris")
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_waqiService_CityFeed_downProvider(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused

	svc := newWAQIService(srv.URL, "t0k3n", 50*time.Millisecond, nopLogger{})
	got := svc.CityFeed(context.Background(), "Paris")
	assert.Equal(t, core.AirQualityResult{Status: core.AirQualityUnavailable}, got)
}
