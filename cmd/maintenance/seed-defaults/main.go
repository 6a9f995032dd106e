package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/config"
	"github.com/tsangpocruise/booking-backend/internal/database"
	"github.com/tsangpocruise/booking-backend/internal/models"
)

func main() {
	var (
		dbURLFlag     string
		adminEmail    string
		pruneAuditAge int
	)
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.StringVar(&adminEmail, "admin-email", "", "promote this registered user to ADMIN")
	flag.IntVar(&pruneAuditAge, "prune-audit-days", 0, "delete audit events older than this many days (0 keeps all)")
	flag.Parse()

	// .env in the working directory is optional
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     2,
		MaxIdleConnections: 1,
	}, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	prices, err := database.NewPriceConfigRepository(db).CreateIfMissing(models.DefaultPriceConfig())
	if err != nil {
		log.Fatalf("failed to seed price config: %v", err)
	}
	fmt.Printf("Price config: version %d, base %.0f, %d slots\n", prices.Version, prices.BasePrice, len(prices.ShortCruiseSlots.V))

	settings, err := database.NewCalendarRepository(db).EnsureSettings(models.DefaultCalendarSettings())
	if err != nil {
		log.Fatalf("failed to seed calendar settings: %v", err)
	}
	fmt.Printf("Calendar settings: version %d, %d-%d days ahead, %d bookings/day\n",
		settings.Version, settings.MinAdvanceDays, settings.MaxAdvanceDays, settings.MaxBookingsPerDay)

	if adminEmail != "" {
		ok, err := database.NewUserRepository(db).SetRole(adminEmail, models.RoleAdmin)
		if err != nil {
			log.Fatalf("failed to promote %s: %v", adminEmail, err)
		}
		if !ok {
			log.Fatalf("no user registered with email %s", adminEmail)
		}
		fmt.Printf("Promoted %s to ADMIN\n", adminEmail)
	}

	if pruneAuditAge > 0 {
		cutoff := time.Now().AddDate(0, 0, -pruneAuditAge)
		n, err := database.NewAuditRepository(db).DeleteOlderThan(cutoff)
		if err != nil {
			log.Fatalf("failed to prune audit logs: %v", err)
		}
		fmt.Printf("Pruned %d audit events older than %s\n", n, cutoff.Format(models.DateLayout))
	}
}
