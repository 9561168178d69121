package aqsvc

import (
	"context"

	"github.com/trezcool/agora/core"
)

// DummyService returns a fixed result for every city. For tests.
type DummyService struct {
	Result core.AirQualityResult
}

var _ core.AirQualityService = (*DummyService)(nil)

func NewDummyService() *DummyService {
	return &DummyService{Result: core.AirQualityResult{Status: core.AirQualityOK, Index: 42}}
}

func (svc *DummyService) CityFeed(context.Context, string) core.AirQualityResult {
	return svc.Result
}
