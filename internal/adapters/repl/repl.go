package repl

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"crm-console/internal/app"
	"crm-console/internal/core"
	"crm-console/internal/forms"
)

var entityForms = []string{"customer", "product", "opportunity", "task", "invoice"}

// Run starts the interactive console loop. It reads slash commands from
// reader and drives entity wizards over stdin; natural language after /draft
// goes through the AI agent.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader) {
	fmt.Println("CRM Console")
	fmt.Println("Type /help for commands.")
	fmt.Println(strings.Repeat("-", 70))

	errExit := fmt.Errorf("exit")

	dispatch := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "dashboard", "d":
			stats, err := svc.GetDashboard(ctx)
			if err != nil {
				return err
			}
			printDashboard(stats)

		case "customers":
			customers, err := svc.ListCustomers(ctx)
			if err != nil {
				return err
			}
			printCustomers(customers)

		case "products":
			products, err := svc.ListProducts(ctx)
			if err != nil {
				return err
			}
			printProducts(products)

		case "opportunities", "deals":
			var stage *core.OpportunityStage
			if len(args) > 0 {
				v := core.OpportunityStage(strings.ToLower(args[0]))
				stage = &v
			}
			opportunities, err := svc.ListOpportunities(ctx, stage)
			if err != nil {
				return err
			}
			printOpportunities(opportunities)

		case "tasks":
			var status *core.TaskStatus
			if len(args) > 0 {
				v := core.TaskStatus(strings.ToLower(args[0]))
				status = &v
			}
			tasks, err := svc.ListTasks(ctx, status)
			if err != nil {
				return err
			}
			printTasks(tasks)

		case "invoices":
			var status *core.PaymentStatus
			if len(args) > 0 {
				v := core.PaymentStatus(strings.ToLower(args[0]))
				status = &v
			}
			invoices, err := svc.ListInvoices(ctx, status)
			if err != nil {
				return err
			}
			printInvoices(invoices)

		case "show":
			if len(args) < 1 {
				fmt.Println("Usage: /show <invoice-id>")
				return nil
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("Invalid id: %s\n", args[0])
				return nil
			}
			inv, err := svc.GetInvoice(ctx, id)
			if err != nil {
				return err
			}
			printInvoiceDetail(inv)

		case "new":
			if len(args) < 1 {
				fmt.Printf("Usage: /new <%s>\n", strings.Join(entityForms, "|"))
				return nil
			}
			handleWizard(ctx, reader, svc, strings.ToLower(args[0]), 0, nil)

		case "edit":
			if len(args) < 2 {
				fmt.Printf("Usage: /edit <%s> <id>\n", strings.Join(entityForms, "|"))
				return nil
			}
			id, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Printf("Invalid id: %s\n", args[1])
				return nil
			}
			handleWizard(ctx, reader, svc, strings.ToLower(args[0]), id, nil)

		case "delete":
			if len(args) < 2 {
				fmt.Printf("Usage: /delete <%s> <id>\n", strings.Join(entityForms, "|"))
				return nil
			}
			id, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Printf("Invalid id: %s\n", args[1])
				return nil
			}
			if err := deleteEntity(ctx, svc, strings.ToLower(args[0]), id); err != nil {
				return err
			}
			fmt.Println("Deleted.")

		case "document", "doc":
			if len(args) < 1 {
				fmt.Println("Usage: /document <invoice-id> [path]")
				return nil
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("Invalid id: %s\n", args[0])
				return nil
			}
			doc, err := svc.RenderInvoiceDocument(ctx, id)
			if err != nil {
				return err
			}
			path := fmt.Sprintf("invoice-%d.html", id)
			if len(args) >= 2 {
				path = args[1]
			}
			if err := os.WriteFile(path, doc, 0o644); err != nil {
				return fmt.Errorf("failed to write document: %w", err)
			}
			fmt.Printf("Wrote %s\n", path)

		case "draft":
			if len(args) == 0 {
				fmt.Println("Usage: /draft <describe the invoice in plain language>")
				return nil
			}
			handleDraft(ctx, reader, svc, strings.Join(args, " "))

		case "help", "h":
			printHelp()

		case "exit", "quit", "e", "q":
			return errExit

		default:
			fmt.Printf("Unknown command: /%s  (type /help for all commands)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Print("\n> ")
		input, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !strings.HasPrefix(input, "/") {
			fmt.Println("Commands start with a slash. Type /help.")
			continue
		}
		if err := dispatch(input); err != nil {
			if err == errExit {
				fmt.Println("Goodbye!")
				break
			}
			fmt.Printf("Error: %v\n", err)
		}
	}
}

// handleWizard opens a create or edit wizard and drives it interactively.
func handleWizard(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService, form string, id int, draft *app.DraftResult) {
	outcome := make(chan string, 1)
	cb := forms.Callbacks{
		OnSubmitted: func(forms.Submission) { outcome <- "Saved." },
		OnFailure:   func(err error) { outcome <- fmt.Sprintf("Save failed: %v", err) },
		OnCancelled: func() { outcome <- "Cancelled." },
	}

	var sess *forms.Session
	var err error
	if id == 0 {
		sess, err = svc.NewWizard(form, cb)
	} else {
		sess, err = svc.EditWizard(ctx, form, id, cb)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if draft != nil {
		sess.Edit(draft.Values, draft.Items, time.Time{})
	}

	runWizard(ctx, reader, sess, outcome)
}

// handleDraft routes text through the AI agent and, if the user accepts,
// loads the draft into an invoice wizard for review.
func handleDraft(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService, text string) {
	fmt.Println("[AI] Drafting...")
	draft, err := svc.DraftInvoice(ctx, text)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("\nDraft for %s, %d item(s):\n", draft.Values["customerName"], len(draft.Items))
	for _, item := range draft.Items {
		fmt.Printf("  %s x %s @ %s\n", item.Quantity, item.ProductName, item.UnitPrice)
	}
	fmt.Print("\nOpen in the invoice wizard? (y/n): ")
	choice, _ := reader.ReadString('\n')
	if c := strings.TrimSpace(strings.ToLower(choice)); c != "y" && c != "yes" {
		fmt.Println("Draft discarded.")
		return
	}
	handleWizard(ctx, reader, svc, "invoice", 0, draft)
}

func deleteEntity(ctx context.Context, svc app.ApplicationService, form string, id int) error {
	switch form {
	case "customer":
		return svc.DeleteCustomer(ctx, id)
	case "product":
		return svc.DeleteProduct(ctx, id)
	case "opportunity":
		return svc.DeleteOpportunity(ctx, id)
	case "task":
		return svc.DeleteTask(ctx, id)
	case "invoice":
		return svc.DeleteInvoice(ctx, id)
	}
	return fmt.Errorf("unknown form %q", form)
}
