package services

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled jobs. Currently one: a daily intake summary
// logged at 08:30 so branch operators start the day with the backlog counts.
type CronService struct {
	cron         *cron.Cron
	statsService *StatisticsService
}

// NewCronService creates a new cron service
func NewCronService(statsService *StatisticsService) *CronService {
	return &CronService{
		cron:         cron.New(),
		statsService: statsService,
	}
}

// Start registers and launches the scheduled jobs
func (s *CronService) Start() {
	s.cron.AddFunc("30 8 * * *", s.logDailySummary)
	s.cron.Start()
	log.Println("✅ CronService started (daily summary at 08:30)")
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) logDailySummary() {
	stats, err := s.statsService.GetStatistics(context.Background())
	if err != nil {
		log.Printf("❌ Daily summary query error: %v", err)
		return
	}

	log.Printf("📊 Intake summary: total=%d open=%d in-progress=%d approved=%d rejected=%d",
		stats.Total, stats.Open, stats.InProgress, stats.Approved, stats.Rejected)
}
