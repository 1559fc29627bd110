package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// InvoiceDraft is the structured payload the model returns for a natural
// language billing request. Quantities and amounts are exact strings so the
// draft feeds straight into the invoice wizard without float round-trips.
type InvoiceDraft struct {
	CustomerName    string      `json:"customer_name" jsonschema_description:"Name of the customer being billed"`
	CustomerEmail   string      `json:"customer_email" jsonschema_description:"Customer email if mentioned, else empty"`
	CustomerAddress string      `json:"customer_address" jsonschema_description:"Billing address if mentioned, else empty"`
	PaymentMethod   string      `json:"payment_method" jsonschema_description:"One of credit_card, bank_transfer, cash, check, paypal, or empty"`
	Notes           string      `json:"notes" jsonschema_description:"Free-form notes for the invoice, else empty"`
	Items           []DraftItem `json:"items" jsonschema_description:"Billable line items, at least one"`
}

// DraftItem is one proposed invoice line. Tax and discount are absolute
// currency amounts for the whole line, not percentages.
type DraftItem struct {
	ProductName string `json:"product_name" jsonschema_description:"Product or service name"`
	Description string `json:"description" jsonschema_description:"Optional line description"`
	Quantity    string `json:"quantity" jsonschema_description:"Quantity as an exact decimal string, e.g. \"2\""`
	UnitPrice   string `json:"unit_price" jsonschema_description:"Unit price as an exact decimal string, e.g. \"150.00\""`
	Tax         string `json:"tax" jsonschema_description:"Absolute tax amount for the line, e.g. \"12.50\", or \"0\""`
	Discount    string `json:"discount" jsonschema_description:"Absolute discount amount for the line, e.g. \"10.00\", or \"0\""`
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// DraftInvoice interprets a natural language billing request and proposes
// invoice fields plus line items. catalog is the current product list, used
// to resolve names and default prices; the caller reviews the draft in the
// wizard before anything is persisted.
func (a *Agent) DraftInvoice(ctx context.Context, text, catalog string) (*InvoiceDraft, error) {
	prompt := fmt.Sprintf(`You are a billing assistant for a CRM console.
Your goal is to turn a request described in natural language into an invoice draft.
Rules:
1. Prefer product names and unit prices from the catalog below; otherwise use what the request says.
2. Quantities and amounts MUST be exact decimal strings (e.g. "150.00"), never floats.
3. Tax and discount are absolute amounts per line, not percentages. Use "0" when absent.
4. Leave fields you cannot infer empty.
5. Propose at least one line item.

Product catalog:
%s

Request: %s`, catalog, text)

	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "invoice_draft",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A draft invoice with line items for human review"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var draft InvoiceDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	if len(draft.Items) == 0 {
		return nil, fmt.Errorf("draft has no line items")
	}
	return &draft, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v InvoiceDraft
	return reflector.Reflect(v)
}
