package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/advancementhq/feedback-pipeline/internal/bootstrap"
	"github.com/advancementhq/feedback-pipeline/internal/config"
	"github.com/advancementhq/feedback-pipeline/internal/observability/logging"
)

func main() {
	now := flag.Bool("now", false, "send the previous week's digest immediately and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.NewJSONLogger("digest", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "digest", logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	send := func() {
		sendCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		if err := app.DigestUC.SendWeekly(sendCtx, previousWeekStart(time.Now().UTC())); err != nil {
			logger.Error("digest_failed", "error", err)
		}
	}

	if *now {
		send()
		return
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.DigestCron, send); err != nil {
		log.Fatalf("invalid digest schedule %q: %v", cfg.DigestCron, err)
	}
	scheduler.Start()
	logger.Info("digest_scheduled", "cron", cfg.DigestCron)

	<-ctx.Done()
	<-scheduler.Stop().Done()
	logger.Info("digest_stopped")
}

// previousWeekStart returns the Monday that opens the most recently
// completed week.
func previousWeekStart(now time.Time) time.Time {
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	thisMonday := now.AddDate(0, 0, -daysSinceMonday).Truncate(24 * time.Hour)
	return thisMonday.AddDate(0, 0, -7)
}
