package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/summitprep/satprep-backend/internal/config"
	"github.com/summitprep/satprep-backend/internal/database"
	"github.com/summitprep/satprep-backend/internal/logger"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/repository"
)

// Seeds a starter set of class times and diagnostic test dates so a fresh
// environment has something to register against. Safe to re-run: duplicates
// are skipped.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	offeringRepo := repository.NewOfferingRepository(pool)

	fmt.Println("=== Seeding Offerings ===")

	// Anchor on the next Monday so seeded slots are always in the future.
	now := time.Now()
	daysUntilMonday := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	if daysUntilMonday == 0 {
		daysUntilMonday = 7
	}
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local).
		AddDate(0, 0, daysUntilMonday)

	offerings := []model.Offering{
		{Kind: model.OfferingClassTime, Name: "Monday & Wednesday 5:00 PM", StartsAt: monday.Add(17 * time.Hour), Capacity: 20, IsActive: true},
		{Kind: model.OfferingClassTime, Name: "Tuesday & Thursday 5:00 PM", StartsAt: monday.AddDate(0, 0, 1).Add(17 * time.Hour), Capacity: 20, IsActive: true},
		{Kind: model.OfferingClassTime, Name: "Saturday 10:00 AM", StartsAt: monday.AddDate(0, 0, 5).Add(10 * time.Hour), Capacity: 30, IsActive: true},
		{Kind: model.OfferingDiagnosticTest, Name: "Saturday Diagnostic 9:00 AM", StartsAt: monday.AddDate(0, 0, 5).Add(9 * time.Hour), Capacity: 40, IsActive: true},
		{Kind: model.OfferingDiagnosticTest, Name: "Sunday Diagnostic 1:00 PM", StartsAt: monday.AddDate(0, 0, 6).Add(13 * time.Hour), Capacity: 40, IsActive: true},
	}

	created := 0
	for i := range offerings {
		o := offerings[i]
		if err := offeringRepo.Create(ctx, &o); err != nil {
			if errors.Is(err, repository.ErrDuplicateOffering) {
				fmt.Printf("Skipped (exists): %s / %s\n", o.Kind, o.Name)
				continue
			}
			log.Fatal().Err(err).Str("name", o.Name).Msg("Failed to create offering")
		}
		created++
		fmt.Printf("Created: %s / %s (ID %d)\n", o.Kind, o.Name, o.ID)
	}

	fmt.Printf("\nSeed completed! %d offerings created, %d skipped.\n", created, len(offerings)-created)
}
