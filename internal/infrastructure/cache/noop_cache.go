package cache

import (
	"context"
	"time"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/application/usecase"
)

var _ usecase.ReportCache = NoopReportCache{}

// NoopReportCache se usa cuando no hay Redis configurado.
type NoopReportCache struct{}

func (NoopReportCache) Get(_ context.Context, _ string) (*dto.SummaryResponse, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) Set(_ context.Context, _ string, _ *dto.SummaryResponse, _ time.Duration) error {
	return nil
}

func (NoopReportCache) Delete(_ context.Context, _ string) error {
	return nil
}
