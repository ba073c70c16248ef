package services

import (
	"context"

	"gcub-intake/internal/adapters/persistence/models"
	"gcub-intake/internal/adapters/persistence/repositories"
	"gcub-intake/internal/core/domain"
)

// StatisticsService derives per-status intake counts for reporting
type StatisticsService struct {
	appRepo *repositories.ApplicationRepository
}

// NewStatisticsService creates a new statistics service
func NewStatisticsService(appRepo *repositories.ApplicationRepository) *StatisticsService {
	return &StatisticsService{appRepo: appRepo}
}

// Statistics represents per-status application counts
type Statistics struct {
	Total      int64 `json:"total"`
	Open       int64 `json:"open"`
	InProgress int64 `json:"in_progress"`
	Approved   int64 `json:"approved"`
	Rejected   int64 `json:"rejected"`
}

// GetStatistics returns application counts per status. Read-only.
func (s *StatisticsService) GetStatistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{}

	total, err := s.appRepo.Count(ctx, nil)
	if err != nil {
		return nil, err
	}
	stats.Total = total

	counts := []struct {
		status domain.Status
		dest   *int64
	}{
		{domain.StatusOpen, &stats.Open},
		{domain.StatusInProgress, &stats.InProgress},
		{domain.StatusApproved, &stats.Approved},
		{domain.StatusRejected, &stats.Rejected},
	}
	for _, c := range counts {
		count, err := s.appRepo.CountByStatus(ctx, c.status.String())
		if err != nil {
			return nil, err
		}
		*c.dest = count
	}

	return stats, nil
}

// DashboardData represents the admin dashboard payload
type DashboardData struct {
	Statistics *Statistics                   `json:"statistics"`
	Recent     []*models.ApplicationResponse `json:"recent_applications"`
}

// GetDashboard returns statistics plus the most recent applications
func (s *StatisticsService) GetDashboard(ctx context.Context) (*DashboardData, error) {
	stats, err := s.GetStatistics(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.appRepo.Recent(ctx, 10)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.ApplicationResponse, 0, len(recent))
	for _, app := range recent {
		responses = append(responses, app.ToResponse())
	}

	return &DashboardData{
		Statistics: stats,
		Recent:     responses,
	}, nil
}
