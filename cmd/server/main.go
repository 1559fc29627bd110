package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "crm-console/internal/adapters/web"
	"crm-console/internal/ai"
	"crm-console/internal/app"
	"crm-console/internal/core"
	"crm-console/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	var agent *ai.Agent
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		agent = ai.NewAgent(apiKey)
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set; AI invoice drafting disabled")
	}

	svc := app.NewAppService(
		pool,
		core.NewCustomerService(pool),
		core.NewProductService(pool),
		core.NewInvoiceService(pool),
		core.NewOpportunityService(pool),
		core.NewTaskService(pool),
		core.NewUserService(pool),
		core.NewReportingService(pool),
		agent,
	)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
