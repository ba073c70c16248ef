package services

import (
	"testing"

	"gcub-intake/internal/adapters/persistence/repositories"
)

func TestCronServiceStartStop(t *testing.T) {
	db, _ := newTestDB(t)
	service := NewCronService(NewStatisticsService(repositories.NewApplicationRepository(db)))

	// The summary job only fires at its schedule, so Start/Stop runs no SQL
	service.Start()
	service.Stop()
}
