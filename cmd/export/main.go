package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/alienorar/student-system.asianuniversity.uz/internal/config"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/export"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/logger"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/model"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/portal"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/session"
)

// Fetches the signed-in student's schedule and finished lessons and
// writes them into an Excel workbook. Credentials come from the
// environment when no session exists yet.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	store := session.NewFileStore(cfg.Session.Path)
	client := portal.NewClient(cfg, store)

	ctx := context.Background()

	rec, err := store.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load session")
	}
	if !rec.Authenticated() {
		creds := model.Credentials{
			Username: os.Getenv("PORTAL_USERNAME"),
			Password: os.Getenv("PORTAL_PASSWORD"),
		}
		if creds.Username == "" {
			log.Fatal().Msg("No session and no PORTAL_USERNAME/PORTAL_PASSWORD set")
		}
		if _, err := client.Login(ctx, creds); err != nil {
			log.Fatal().Err(err).Msg("Login failed")
		}
	}

	page, err := client.Schedule(ctx, model.ScheduleQuery{
		Size: 100,
		Page: 1,
		Time: model.ScheduleTimeWeek,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch schedule")
	}

	finished, err := client.FinishedLessons(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch finished lessons")
	}

	if err := export.WriteWorkbook(cfg.Export.OutputPath, page.Content, finished); err != nil {
		log.Fatal().Err(err).Msg("Failed to write workbook")
	}

	log.Info().Str("path", cfg.Export.OutputPath).
		Int("schedule_entries", len(page.Content)).
		Msg("Workbook written")
}
