package main

import (
	"os"
	"time"

	"beatsbook/internal/events"
	"beatsbook/internal/shared/config"
	"beatsbook/internal/shared/database"
	"beatsbook/internal/users"
	"beatsbook/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the database with a demo organiser account and a starter concert
// catalogue, for local development and demos. Safe to run repeatedly: it
// exits without writing when the catalogue already exists.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New()
	logger.SetDefault(log)

	if err := database.Connect(cfg); err != nil {
		log.WithError(err).Error("failed to connect to database")
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.WithError(err).Error("failed to run migrations")
		os.Exit(1)
	}

	db := database.GetDB()

	var count int64
	if err := db.Model(&events.Event{}).Count(&count).Error; err != nil {
		log.WithError(err).Error("failed to inspect catalogue")
		os.Exit(1)
	}
	if count > 0 {
		log.Info("catalogue already seeded, nothing to do", "events", count)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Error("failed to hash demo password")
		os.Exit(1)
	}

	owner := &users.User{
		FirstName: "Demo",
		LastName:  "Organiser",
		Username:  "demo-organiser",
		Email:     "organiser@beatsbook.dev",
		Password:  string(hashed),
		Role:      users.RoleAdmin,
	}
	if err := db.Create(owner).Error; err != nil {
		log.WithError(err).Error("failed to create demo organiser")
		os.Exit(1)
	}

	now := time.Now().UTC()
	catalogue := []*events.Event{
		{
			OwnerID:     owner.ID,
			Name:        "Arijit Singh Live",
			Description: "An evening of soulful Bollywood hits.",
			Category:    "Bollywood",
			Venue:       "Wembley Arena",
			City:        "London",
			StartTime:   now.AddDate(0, 1, 0),
			Price:       decimal.NewFromInt(45),
			Tiers: []events.TicketTier{
				{Name: "Silver", Quantity: 300, Price: decimal.NewFromInt(45)},
				{Name: "Gold", Quantity: 150, Price: decimal.NewFromInt(75)},
				{Name: "Platinum", Quantity: 50, Price: decimal.NewFromInt(120)},
			},
		},
		{
			OwnerID:     owner.ID,
			Name:        "Shreya Ghoshal in Concert",
			Description: "Classical and film favourites with a live orchestra.",
			Category:    "Bollywood",
			Venue:       "The O2",
			City:        "London",
			StartTime:   now.AddDate(0, 2, 0),
			Capacity:    400,
			Price:       decimal.NewFromInt(55),
		},
		{
			OwnerID:     owner.ID,
			Name:        "Punjabi Beats Night",
			Description: "Bhangra and Punjabi pop, back to back.",
			Category:    "Punjabi",
			Venue:       "Birmingham Arena",
			City:        "Birmingham",
			StartTime:   now.AddDate(0, 0, 14),
			Capacity:    250,
			Price:       decimal.NewFromInt(30),
		},
		{
			OwnerID:     owner.ID,
			Name:        "Sufi Soul Evening",
			Description: "Qawwali and sufi classics in an intimate setting.",
			Category:    "Sufi",
			Venue:       "Bridgewater Hall",
			City:        "Manchester",
			StartTime:   now.AddDate(0, 0, 21),
			Capacity:    120,
			Price:       decimal.NewFromInt(35),
		},
	}

	for _, event := range catalogue {
		event.Status = events.ComputeStatus(events.StatusOpen, event.StartTime, event.Remaining(), now)
		if err := db.Create(event).Error; err != nil {
			log.WithError(err).Error("failed to seed event", "name", event.Name)
			os.Exit(1)
		}
	}

	log.Info("catalogue seeded", "events", len(catalogue), "owner", owner.Email)
}
