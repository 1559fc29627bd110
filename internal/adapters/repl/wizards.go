package repl

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"crm-console/internal/forms"
)

// runWizard drives one wizard session over stdin until it closes. outcome
// receives exactly one message per terminal event (saved, failed, cancelled);
// on failure the session stays open and the loop continues.
func runWizard(ctx context.Context, reader *bufio.Reader, sess *forms.Session, outcome chan string) {
	schema := sess.Schema()

	for !sess.Closed() {
		step, ok := schema.Step(sess.Step())
		if !ok {
			return
		}
		fmt.Printf("\n── %s — step %d/%d: %s ──\n", schema.Name, step.Index, schema.StepCount(), step.Title)

		if len(step.Fields) > 0 {
			editFields(reader, sess, schema, step.Fields)
		}
		if schema.HasItems && step.Extra != nil {
			editItems(reader, sess)
		}

		last := step.Index == schema.StepCount()
		prompt := "[n]ext, [b]ack, [s]ubmit, [c]ancel: "
		if last {
			prompt = "[b]ack, [s]ubmit, [c]ancel: "
		}
		fmt.Print(prompt)
		raw, _ := reader.ReadString('\n')
		switch strings.TrimSpace(strings.ToLower(raw)) {
		case "n", "next", "":
			if last {
				continue
			}
			if !sess.Next() {
				fmt.Println("This step is not complete yet:")
				printStepProblems(sess, step)
			}
		case "b", "back", "p", "prev":
			sess.Prev()
		case "s", "submit":
			if !sess.Submit(ctx) {
				fmt.Println("The form is not ready to submit:")
				errs := sess.Errors()
				for _, e := range errs {
					fmt.Printf("  - %s\n", e.Message)
				}
				if len(errs) == 0 {
					fmt.Println("  - the invoice needs at least one complete line item")
				}
				continue
			}
			msg := <-outcome
			fmt.Println(msg)
		case "c", "cancel":
			sess.Cancel()
			fmt.Println(<-outcome)
		}
	}
}

// editFields prompts for each of the step's fields in order. Blank input
// keeps the current value; invalid input is stored anyway (editing is never
// blocked) and the failure is shown inline.
func editFields(reader *bufio.Reader, sess *forms.Session, schema *forms.Schema, names []string) {
	for _, name := range names {
		spec, ok := schema.Field(name)
		if !ok {
			continue
		}
		current := sess.Get(name)
		hint := ""
		if len(spec.Options) > 0 {
			hint = " (" + strings.Join(spec.Options, "/") + ")"
		}
		fmt.Printf("  %s%s [%s]: ", spec.Label, hint, current)
		raw, _ := reader.ReadString('\n')
		raw = strings.TrimSpace(raw)
		if raw != "" {
			sess.Set(name, raw)
		}
		if e := sess.FieldError(name); e != nil {
			fmt.Printf("    ! %s\n", e.Message)
		}
	}
}

// editItems runs the line-item sub-editor with a live totals preview.
func editItems(reader *bufio.Reader, sess *forms.Session) {
	for {
		printItems(sess.Items(), sess.Totals())
		fmt.Print("  [a]dd, [e]dit <n>, [r]emove <n>, [d]one: ")
		raw, _ := reader.ReadString('\n')
		tokens := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
		if len(tokens) == 0 {
			continue
		}
		switch tokens[0] {
		case "a", "add":
			item := promptItem(reader, forms.NewLineItem())
			sess.AddItem(item)
		case "e", "edit":
			i, ok := itemIndex(tokens, len(sess.Items()))
			if !ok {
				fmt.Println("  Usage: e <row-number>")
				continue
			}
			item := promptItem(reader, sess.Items()[i])
			sess.SetItem(i, item)
		case "r", "remove":
			i, ok := itemIndex(tokens, len(sess.Items()))
			if !ok {
				fmt.Println("  Usage: r <row-number>")
				continue
			}
			sess.RemoveItem(i)
		case "d", "done":
			return
		}
	}
}

// promptItem edits one row field by field; blank keeps the shown value.
func promptItem(reader *bufio.Reader, item forms.LineItem) forms.LineItem {
	item.ProductName = promptValue(reader, "Product", item.ProductName)
	item.Description = promptValue(reader, "Description", item.Description)
	item.Quantity = promptValue(reader, "Quantity", item.Quantity)
	item.UnitPrice = promptValue(reader, "Unit price", item.UnitPrice)
	item.Tax = promptValue(reader, "Tax amount", item.Tax)
	item.Discount = promptValue(reader, "Discount amount", item.Discount)
	return item
}

func promptValue(reader *bufio.Reader, label, current string) string {
	fmt.Printf("    %s [%s]: ", label, current)
	raw, _ := reader.ReadString('\n')
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return current
	}
	return raw
}

// itemIndex parses a 1-based row reference from a command's tokens.
func itemIndex(tokens []string, n int) (int, bool) {
	if len(tokens) < 2 {
		return 0, false
	}
	i, err := strconv.Atoi(tokens[1])
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

// printStepProblems lists what is blocking the current step's gate.
func printStepProblems(sess *forms.Session, step forms.StepSpec) {
	shown := false
	for _, name := range step.Fields {
		if e := sess.FieldError(name); e != nil {
			fmt.Printf("  - %s\n", e.Message)
			shown = true
		}
	}
	if step.Extra != nil && !shown {
		fmt.Println("  - the invoice needs at least one complete line item")
	}
}
