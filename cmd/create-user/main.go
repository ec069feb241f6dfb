package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/filmscatalog/backend/internal/config"
	"github.com/filmscatalog/backend/internal/models"
	"github.com/filmscatalog/backend/internal/services"
	"github.com/filmscatalog/backend/pkg/jwt"
	"github.com/joho/godotenv"
)

// Seeds a user row and prints an access token. The catalog has no
// registration endpoint; identity rows come from here or an external
// directory.
func main() {
	username := flag.String("username", "", "username for the new user (required)")
	password := flag.String("password", "", "password for the new user (required)")
	name := flag.String("name", "", "display name")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("both -username and -password are required")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.New()

	db, err := models.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userService := services.NewUserService(db, cfg)
	user, err := userService.CreateUser(*username, *password, *name)
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	token, err := jwt.GenerateToken(user.ID.String(), jwt.AccessToken, cfg.JWTSecret, cfg.JWTAccessTokenDuration)
	if err != nil {
		log.Fatalf("Failed to generate access token: %v", err)
	}

	fmt.Println("User created successfully!")
	fmt.Println("======================================")
	fmt.Printf("ID:       %s\n", user.ID)
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Token:    %s\n", token)
	fmt.Println("======================================")
}
