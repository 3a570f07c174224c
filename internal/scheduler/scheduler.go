package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler управляет запланированными задачами: ежедневный отчет админу
// и чистка протухших сессий и whitelist-записей.
type Scheduler struct {
	cron       *cron.Cron
	ctx        context.Context
	cancel     context.CancelFunc
	reportCron string
	reportFunc func(ctx context.Context) error
	sweepFunc  func() (sessions, verified int)
}

// New создает новый планировщик
func New(reportCron string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		ctx:        ctx,
		cancel:     cancel,
		reportCron: reportCron,
	}
}

// SetReportFunction устанавливает функцию для генерации отчетов
func (s *Scheduler) SetReportFunction(f func(ctx context.Context) error) {
	s.reportFunc = f
}

// SetSweepFunction устанавливает функцию чистки устаревшего состояния
func (s *Scheduler) SetSweepFunction(f func() (sessions, verified int)) {
	s.sweepFunc = f
}

// Start запускает планировщик
func (s *Scheduler) Start() error {
	if s.reportFunc != nil {
		_, err := s.cron.AddFunc(s.reportCron, func() {
			log.Printf("🕘 Triggered daily report generation (%s UTC)", s.reportCron)
			if err := s.reportFunc(s.ctx); err != nil {
				log.Printf("❌ Daily report generation failed: %v", err)
			}
		})
		if err != nil {
			return err
		}
	} else {
		log.Println("⚠️ Report function not set, scheduler will not generate reports")
	}

	if s.sweepFunc != nil {
		// Каждый час чистим устаревшее состояние
		_, err := s.cron.AddFunc("0 * * * *", func() {
			sessions, verified := s.sweepFunc()
			if sessions > 0 || verified > 0 {
				log.Printf("🧹 Swept %d stale sessions, %d stale whitelist entries", sessions, verified)
			}
		})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	log.Println("📅 Scheduler started")
	return nil
}

// Stop останавливает планировщик
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("📅 Scheduler stopped")
}

// IsRunning проверяет, запущен ли планировщик
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
