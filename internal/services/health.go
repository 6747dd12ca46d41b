package services

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"passin/internal/domain"
)

const healthFailureMessage = "Service Unavailable Exception"

type healthService struct {
	indicators []domain.HealthIndicator
	sink       domain.LogSink
	logger     *slog.Logger
	timeout    time.Duration
	now        func() time.Time
}

// NewHealthService runs indicators concurrently, each bounded by timeout.
func NewHealthService(indicators []domain.HealthIndicator, sink domain.LogSink, logger *slog.Logger, timeout time.Duration) domain.HealthService {
	return &healthService{
		indicators: indicators,
		sink:       sink,
		logger:     logger,
		timeout:    timeout,
		now:        time.Now,
	}
}

func (s *healthService) Check(ctx context.Context) *domain.HealthReport {
	results := make([]domain.IndicatorResult, len(s.indicators))
	var wg sync.WaitGroup
	for i, ind := range s.indicators {
		wg.Add(1)
		go func(i int, ind domain.HealthIndicator) {
			defer wg.Done()
			ictx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			if err := ind.Check(ictx); err != nil {
				results[i] = domain.IndicatorResult{Status: domain.IndicatorDown, Message: err.Error()}
				return
			}
			results[i] = domain.IndicatorResult{Status: domain.IndicatorUp}
		}(i, ind)
	}
	wg.Wait()

	report := &domain.HealthReport{
		Status:  domain.HealthStatusOK,
		Info:    map[string]domain.IndicatorResult{},
		Error:   map[string]domain.IndicatorResult{},
		Details: map[string]domain.IndicatorResult{},
	}
	for i, ind := range s.indicators {
		r := results[i]
		report.Details[ind.Name()] = r
		if r.Status == domain.IndicatorUp {
			report.Info[ind.Name()] = r
		} else {
			report.Error[ind.Name()] = r
			report.Status = domain.HealthStatusError
		}
	}

	if report.OK() {
		s.logger.InfoContext(ctx, "all services are up and running")
		return report
	}

	entry := &domain.ErrorLog{
		StatusCode: http.StatusServiceUnavailable,
		Message:    healthFailureMessage,
		Details:    report.Details,
		Timestamp:  s.now().UTC(),
	}
	s.logger.ErrorContext(ctx, "health check failed", "failing", report.Error)
	if err := s.sink.Send(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "could not forward health failure", "error", err)
	}
	return report
}
