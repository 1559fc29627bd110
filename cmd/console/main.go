package main

import (
	"bufio"
	"context"
	"log"
	"os"

	replAdapter "crm-console/internal/adapters/repl"
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

	replAdapter.Run(ctx, svc, bufio.NewReader(os.Stdin))
}
