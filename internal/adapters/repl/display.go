package repl

import (
	"fmt"
	"os"
	"strings"

	"crm-console/internal/core"
	"crm-console/internal/forms"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(header)
	return tw
}

func printDashboard(stats *core.DashboardStats) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Println("  DASHBOARD")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  Customers        : %d\n", stats.TotalCustomers)
	fmt.Printf("  Products         : %d  (inventory value %s)\n", stats.TotalProducts, stats.InventoryValue.StringFixed(2))
	fmt.Printf("  Invoices         : %d\n", stats.TotalInvoices)
	fmt.Printf("  Revenue (paid)   : %s\n", stats.TotalRevenue.StringFixed(2))
	fmt.Printf("  Outstanding      : %s\n", stats.OutstandingAmount.StringFixed(2))
	fmt.Printf("  Tasks            : %d pending, %d completed\n", stats.PendingTasks, stats.CompletedTasks)
	fmt.Printf("  Pipeline         : %d open (%s), %d won\n",
		stats.OpenOpportunities, stats.PipelineValue.StringFixed(2), stats.WonOpportunities)
	fmt.Printf("  Weighted pipeline: %s\n", stats.WeightedPipeline.StringFixed(2))
	fmt.Println(strings.Repeat("=", 62))
}

func printCustomers(customers []core.Customer) {
	if len(customers) == 0 {
		fmt.Println("No customers found.")
		return
	}
	tw := newTable(table.Row{"ID", "Name", "Email", "Phone", "Company", "Tags", "Status"})
	for _, c := range customers {
		tw.AppendRow(table.Row{c.ID, c.Name, c.Email, c.Phone, c.Company, strings.Join(c.Tags, ", "), c.Status})
	}
	tw.Render()
}

func printProducts(products []core.Product) {
	if len(products) == 0 {
		fmt.Println("No products found.")
		return
	}
	tw := newTable(table.Row{"ID", "Name", "Price", "Stock", "Category", "Status"})
	for _, p := range products {
		tw.AppendRow(table.Row{p.ID, p.Name, p.Price.StringFixed(2), p.Stock, p.Category, p.Status})
	}
	tw.Render()
}

func printOpportunities(opportunities []core.Opportunity) {
	if len(opportunities) == 0 {
		fmt.Println("No opportunities found.")
		return
	}
	tw := newTable(table.Row{"ID", "Title", "Customer", "Value", "Stage", "Prob %", "Close"})
	for _, o := range opportunities {
		tw.AppendRow(table.Row{o.ID, o.Title, o.CustomerName, o.Value.StringFixed(2), o.Stage, o.Probability, o.ExpectedCloseDate})
	}
	tw.Render()
}

func printTasks(tasks []core.Task) {
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return
	}
	tw := newTable(table.Row{"ID", "Title", "Due", "Status", "Priority", "Assignee"})
	for _, t := range tasks {
		tw.AppendRow(table.Row{t.ID, t.Title, t.DueDate, t.Status, t.Priority, t.Assignee})
	}
	tw.Render()
}

func printInvoices(invoices []core.Invoice) {
	if len(invoices) == 0 {
		fmt.Println("No invoices found.")
		return
	}
	tw := newTable(table.Row{"ID", "Number", "Customer", "Date", "Due", "Status", "Total"})
	for _, inv := range invoices {
		tw.AppendRow(table.Row{inv.ID, inv.InvoiceNumber, inv.CustomerName, inv.Date, inv.DueDate, inv.Status, inv.TotalAmount.StringFixed(2)})
	}
	tw.Render()
}

func printInvoiceDetail(inv *core.Invoice) {
	fmt.Println()
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("  Invoice:   %s\n", inv.InvoiceNumber)
	fmt.Printf("  Customer:  %s\n", inv.CustomerName)
	fmt.Printf("  Status:    %s\n", inv.Status)
	fmt.Printf("  Date:      %s  (due %s)\n", inv.Date, inv.DueDate)
	if inv.PaidAt != nil {
		fmt.Printf("  Paid at:   %s\n", inv.PaidAt.Format("2006-01-02"))
	}
	fmt.Println(strings.Repeat("-", 60))
	tw := newTable(table.Row{"#", "Item", "Qty", "Unit price", "Discount", "Tax"})
	for _, item := range inv.Items {
		tw.AppendRow(table.Row{item.LineNumber, item.ProductName,
			item.Quantity.String(), item.UnitPrice.StringFixed(2),
			item.Discount.StringFixed(2), item.Tax.StringFixed(2)})
	}
	tw.Render()
	fmt.Printf("  %-43s %12s\n", "SUBTOTAL", inv.Subtotal.StringFixed(2))
	fmt.Printf("  %-43s %12s\n", "TAX", inv.TaxAmount.StringFixed(2))
	fmt.Printf("  %-43s %12s\n", "TOTAL", inv.TotalAmount.StringFixed(2))
	fmt.Println(strings.Repeat("-", 60))
}

// printItems renders the wizard's live item rows with the totals preview.
func printItems(items []forms.LineItem, totals forms.Totals) {
	fmt.Println()
	if len(items) == 0 {
		fmt.Println("  (no line items)")
	}
	for i, item := range items {
		marker := " "
		if !item.Complete() {
			marker = "!"
		}
		fmt.Printf("  %s %d. %-24s qty %-6s @ %-10s line total %s\n",
			marker, i+1, item.ProductName, item.Quantity, item.UnitPrice, item.Total().StringFixed(2))
	}
	fmt.Printf("  Subtotal %s | Tax %s | Total %s\n",
		totals.Subtotal.StringFixed(2), totals.TaxTotal.StringFixed(2), totals.GrandTotal.StringFixed(2))
}

func printHelp() {
	fmt.Println()
	fmt.Println("CRM CONSOLE — COMMANDS")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Println()
	fmt.Println("  OVERVIEW")
	fmt.Println("  /dashboard                       Rollup stats across all entities")
	fmt.Println()
	fmt.Println("  LISTS")
	fmt.Println("  /customers                       List customers")
	fmt.Println("  /products                        List products")
	fmt.Println("  /opportunities [stage]           List pipeline deals")
	fmt.Println("  /tasks [status]                  List tasks")
	fmt.Println("  /invoices [status]               List invoices")
	fmt.Println("  /show <invoice-id>               Invoice detail with line items")
	fmt.Println()
	fmt.Println("  EDITING  (multi-step wizards)")
	fmt.Println("  /new <form>                      Create: customer, product, opportunity, task, invoice")
	fmt.Println("  /edit <form> <id>                Edit an existing record")
	fmt.Println("  /delete <form> <id>              Delete a record")
	fmt.Println()
	fmt.Println("  INVOICES")
	fmt.Println("  /document <id> [path]            Export an invoice as printable HTML")
	fmt.Println("  /draft <text>                    AI-draft an invoice from plain language")
	fmt.Println()
	fmt.Println("  SESSION")
	fmt.Println("  /help                            Show this help")
	fmt.Println("  /exit                            Exit")
	fmt.Println(strings.Repeat("=", 62))
}
