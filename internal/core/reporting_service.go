package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DashboardStats is the landing-page rollup across all entities.
type DashboardStats struct {
	TotalCustomers    int             `json:"total_customers"`
	TotalProducts     int             `json:"total_products"`
	TotalInvoices     int             `json:"total_invoices"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	PendingTasks      int             `json:"pending_tasks"`
	CompletedTasks    int             `json:"completed_tasks"`
	OpenOpportunities int             `json:"open_opportunities"`
	WonOpportunities  int             `json:"won_opportunities"`
	PipelineValue     decimal.Decimal `json:"pipeline_value"`
	WeightedPipeline  decimal.Decimal `json:"weighted_pipeline"`
	InventoryValue    decimal.Decimal `json:"inventory_value"`
}

// ReportingService computes dashboard rollups.
type ReportingService interface {
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

type reportingService struct {
	customers     CustomerService
	products      ProductService
	invoices      InvoiceService
	opportunities OpportunityService
	tasks         TaskService
}

func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{
		customers:     NewCustomerService(pool),
		products:      NewProductService(pool),
		invoices:      NewInvoiceService(pool),
		opportunities: NewOpportunityService(pool),
		tasks:         NewTaskService(pool),
	}
}

func (s *reportingService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	customers, err := s.customers.GetCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load customers for dashboard: %w", err)
	}
	products, err := s.products.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products for dashboard: %w", err)
	}
	invoices, err := s.invoices.GetInvoices(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices for dashboard: %w", err)
	}
	opportunities, err := s.opportunities.GetOpportunities(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load opportunities for dashboard: %w", err)
	}
	tasks, err := s.tasks.GetTasks(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks for dashboard: %w", err)
	}

	stats := &DashboardStats{
		TotalCustomers:    len(customers),
		TotalProducts:     len(products),
		TotalInvoices:     len(invoices),
		TotalRevenue:      RevenueTotal(invoices),
		OutstandingAmount: OutstandingTotal(invoices),
		InventoryValue:    InventoryValue(products),
		PipelineValue:     PipelineValue(opportunities),
		WeightedPipeline:  WeightedPipeline(opportunities),
	}
	for _, t := range tasks {
		switch t.Status {
		case TaskCompleted:
			stats.CompletedTasks++
		default:
			stats.PendingTasks++
		}
	}
	for _, o := range opportunities {
		if o.Stage == StageWon {
			stats.WonOpportunities++
		} else if o.Open() {
			stats.OpenOpportunities++
		}
	}
	return stats, nil
}

// RevenueTotal sums the totals of paid invoices.
func RevenueTotal(invoices []Invoice) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range invoices {
		if inv.Status == InvoicePaid {
			total = total.Add(inv.TotalAmount)
		}
	}
	return total
}

// OutstandingTotal sums the totals of invoices still awaiting payment.
func OutstandingTotal(invoices []Invoice) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range invoices {
		if inv.Status == InvoicePending || inv.Status == InvoiceOverdue {
			total = total.Add(inv.TotalAmount)
		}
	}
	return total
}

// InventoryValue sums price times stock across the catalog.
func InventoryValue(products []Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	return total
}

// PipelineValue sums the value of open opportunities.
func PipelineValue(opportunities []Opportunity) decimal.Decimal {
	total := decimal.Zero
	for _, o := range opportunities {
		if o.Open() {
			total = total.Add(o.Value)
		}
	}
	return total
}

// WeightedPipeline sums open opportunity values scaled by their probability.
func WeightedPipeline(opportunities []Opportunity) decimal.Decimal {
	total := decimal.Zero
	for _, o := range opportunities {
		if o.Open() {
			weight := decimal.NewFromInt(int64(o.Probability)).Div(decimal.NewFromInt(100))
			total = total.Add(o.Value.Mul(weight))
		}
	}
	return total
}
