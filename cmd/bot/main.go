package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"alumni-check/internal/analytics"
	"alumni-check/internal/config"
	"alumni-check/internal/gatekeeper"
	"alumni-check/internal/intake"
	"alumni-check/internal/moderation"
	"alumni-check/internal/roster"
	"alumni-check/internal/scheduler"
	"alumni-check/internal/storage"
	"alumni-check/internal/telegram"
	"alumni-check/internal/whitelist"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	dsn, err := cfg.RosterDSN()
	if err != nil {
		log.Fatalf("roster database not configured: %v", err)
	}
	db, err := roster.Open(dsn)
	if err != nil {
		log.Fatalf("failed to connect to roster database: %v", err)
	}
	defer db.Close()

	repo, err := roster.NewPostgresRepository(db, cfg.DBTable)
	if err != nil {
		log.Fatalf("failed to init roster repository: %v", err)
	}
	matcher := roster.NewMatcher(repo)

	var verified whitelist.Store
	if cfg.WhitelistFilePath != "" {
		fs, err := whitelist.NewFileStore(cfg.WhitelistFilePath)
		if err != nil {
			log.Printf("failed to init whitelist file store, falling back to memory: %v", err)
		} else {
			verified = fs
		}
	}
	if verified == nil {
		verified = whitelist.NewMemoryStore()
	}

	var rec storage.Recorder
	if cfg.LogFilePath != "" {
		fr, err := storage.NewFileRecorder(cfg.LogFilePath)
		if err != nil {
			log.Printf("failed to init file recorder: %v", err)
		} else {
			rec = fr
		}
	}

	svc := gatekeeper.New(
		matcher,
		repo,
		intake.NewManager(intake.NewMemoryStore()),
		verified,
		moderation.NewDefault(),
		rec,
		cfg.AdminUserID,
		cfg.AdminUsername,
		cfg.EmptyBioPolicy,
	)

	bot, err := telegram.New(cfg.TelegramBotToken, svc, cfg.MessageParseMode)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	sched := scheduler.New(cfg.ReportCron)
	if cfg.AdminUserID != 0 && rec != nil {
		recorder := rec
		adminID := cfg.AdminUserID
		sched.SetReportFunction(func(ctx context.Context) error {
			events, err := recorder.LoadOutcomes()
			if err != nil {
				return err
			}
			stats := analytics.AnalyzeDaily(events, time.Now().UTC())
			bot.SendMessage(adminID, stats.ReportSummary())
			return nil
		})
	}
	sched.SetSweepFunction(func() (int, int) {
		return svc.Sweep(cfg.SessionTTL, cfg.WhitelistTTL)
	})
	if err := sched.Start(); err != nil {
		log.Printf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	bot.Start(context.Background())
}
