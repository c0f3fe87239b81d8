package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/zinefold/zinefold-api/internal/config"
	"github.com/zinefold/zinefold-api/internal/pkg/jwt"
)

// Prints a signed access token for local development. Production tokens
// come from the auth service; this only works against a shared JWT_SECRET.
func main() {
	userFlag := flag.String("user", "", "user id to embed (defaults to a random uuid)")
	flag.Parse()

	cfg := config.Load()

	userID := uuid.New()
	if *userFlag != "" {
		parsed, err := uuid.Parse(*userFlag)
		if err != nil {
			log.Fatalf("invalid -user: %v", err)
		}
		userID = parsed
	}

	svc := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)
	token, err := svc.GenerateAccessToken(userID)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}

	fmt.Println("user_id:", userID)
	fmt.Println("expires:", cfg.JWTAccessTTL)
	fmt.Println(token)
}
