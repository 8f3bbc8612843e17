package main

import (
	"context"
	"log"
	"os"

	"dealflow/auth"
	"dealflow/db"
	"dealflow/deal"
	"dealflow/dispute"
	"dealflow/escrow"
	"dealflow/matching"
	"dealflow/reputation"
)

func main() {
	ctx := context.Background()

	connString := os.Getenv("DATABASE_URL")
	pool, err := db.NewPool(ctx, connString)
	if err != nil {
		log.Fatalf("bootstrap database pool: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	authService := auth.NewService(auth.NewRepository(pool), jwtSecret)

	dealRepo := deal.NewRepository(pool)
	dealService := deal.NewService(dealRepo)

	escrowService := escrow.NewStatusService(pool)

	matchService := matching.NewService(dealRepo, matching.NewPreferencesRepository(pool))

	escrowRepo := escrow.NewRepository(pool)
	reputationService := reputation.NewService(reputation.NewRepository(pool), escrowRepo)

	disputeService := dispute.NewService(dispute.NewRepository(pool), escrowService)

	log.Printf("dealflow services ready: auth=%t deals=%t escrow=%t matching=%t reputation=%t disputes=%t",
		authService != nil, dealService != nil, escrowService != nil,
		matchService != nil, reputationService != nil, disputeService != nil)
}
