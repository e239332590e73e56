package main

import (
	"log"
	"os"
	"time"

	"github.com/budgetboard-dev/budgetboard/db"
	"github.com/budgetboard-dev/budgetboard/internal/auth"
	"github.com/budgetboard-dev/budgetboard/internal/router"
	"github.com/budgetboard-dev/budgetboard/internal/sweeper"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}

	if err := db.ConnectDatabase(os.Getenv("DATABASE_URL")); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	sweep := sweeper.New(db.DB, time.Now)
	sweep.Start()
	defer sweep.Stop()

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
