package web

import (
	"fmt"
	"net/http"

	"crm-console/internal/app"
	"crm-console/internal/core"
	"crm-console/internal/forms"
)

// saveBody is the JSON shape for create/update requests: raw field strings
// keyed by form field name, plus line-item rows for invoices. The server runs
// the same form pass an interactive wizard would, so a payload that skips the
// UI is validated no differently.
type saveBody struct {
	Values map[string]string `json:"values"`
	Items  []forms.LineItem  `json:"items,omitempty"`
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetDashboard(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, stats)
}

// ── Customers ────────────────────────────────────────────────────────────────

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, customers)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	c, err := h.svc.GetCustomer(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, c)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	h.saveCustomer(w, r, 0)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	if id, ok := idParam(w, r); ok {
		h.saveCustomer(w, r, id)
	}
}

func (h *Handler) saveCustomer(w http.ResponseWriter, r *http.Request, id int) {
	var body saveBody
	if !decodeJSON(w, r, &body) {
		return
	}
	c, err := h.svc.SaveCustomer(r.Context(), app.SaveRequest{ID: id, Values: body.Values})
	if err != nil {
		writeSaveError(w, r, err)
		return
	}
	writeJSON(w, c)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteCustomer(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Products ─────────────────────────────────────────────────────────────────

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListProducts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	p, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, 0)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	if id, ok := idParam(w, r); ok {
		h.saveProduct(w, r, id)
	}
}

func (h *Handler) saveProduct(w http.ResponseWriter, r *http.Request, id int) {
	var body saveBody
	if !decodeJSON(w, r, &body) {
		return
	}
	p, err := h.svc.SaveProduct(r.Context(), app.SaveRequest{ID: id, Values: body.Values})
	if err != nil {
		writeSaveError(w, r, err)
		return
	}
	writeJSON(w, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Opportunities ────────────────────────────────────────────────────────────

func (h *Handler) listOpportunities(w http.ResponseWriter, r *http.Request) {
	var stage *core.OpportunityStage
	if s := r.URL.Query().Get("stage"); s != "" {
		v := core.OpportunityStage(s)
		stage = &v
	}
	opportunities, err := h.svc.ListOpportunities(r.Context(), stage)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, opportunities)
}

func (h *Handler) getOpportunity(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	o, err := h.svc.GetOpportunity(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, o)
}

func (h *Handler) createOpportunity(w http.ResponseWriter, r *http.Request) {
	h.saveOpportunity(w, r, 0)
}

func (h *Handler) updateOpportunity(w http.ResponseWriter, r *http.Request) {
	if id, ok := idParam(w, r); ok {
		h.saveOpportunity(w, r, id)
	}
}

func (h *Handler) saveOpportunity(w http.ResponseWriter, r *http.Request, id int) {
	var body saveBody
	if !decodeJSON(w, r, &body) {
		return
	}
	o, err := h.svc.SaveOpportunity(r.Context(), app.SaveRequest{ID: id, Values: body.Values})
	if err != nil {
		writeSaveError(w, r, err)
		return
	}
	writeJSON(w, o)
}

func (h *Handler) deleteOpportunity(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteOpportunity(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Tasks ────────────────────────────────────────────────────────────────────

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	var status *core.TaskStatus
	if s := r.URL.Query().Get("status"); s != "" {
		v := core.TaskStatus(s)
		status = &v
	}
	tasks, err := h.svc.ListTasks(r.Context(), status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, tasks)
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	t, err := h.svc.GetTask(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, t)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	h.saveTask(w, r, 0)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	if id, ok := idParam(w, r); ok {
		h.saveTask(w, r, id)
	}
}

func (h *Handler) saveTask(w http.ResponseWriter, r *http.Request, id int) {
	var body saveBody
	if !decodeJSON(w, r, &body) {
		return
	}
	t, err := h.svc.SaveTask(r.Context(), app.SaveRequest{ID: id, Values: body.Values})
	if err != nil {
		writeSaveError(w, r, err)
		return
	}
	writeJSON(w, t)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteTask(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Invoices ─────────────────────────────────────────────────────────────────

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	var status *core.PaymentStatus
	if s := r.URL.Query().Get("status"); s != "" {
		v := core.PaymentStatus(s)
		status = &v
	}
	invoices, err := h.svc.ListInvoices(r.Context(), status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, invoices)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	inv, err := h.svc.GetInvoice(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, inv)
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	h.saveInvoice(w, r, 0)
}

func (h *Handler) updateInvoice(w http.ResponseWriter, r *http.Request) {
	if id, ok := idParam(w, r); ok {
		h.saveInvoice(w, r, id)
	}
}

func (h *Handler) saveInvoice(w http.ResponseWriter, r *http.Request, id int) {
	var body saveBody
	if !decodeJSON(w, r, &body) {
		return
	}
	inv, err := h.svc.SaveInvoice(r.Context(), app.SaveRequest{ID: id, Values: body.Values, Items: body.Items})
	if err != nil {
		writeSaveError(w, r, err)
		return
	}
	writeJSON(w, inv)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteInvoice(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// invoiceDocument serves a stored invoice as a printable HTML document.
func (h *Handler) invoiceDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	doc, err := h.svc.RenderInvoiceDocument(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=invoice-%d.html", id))
	_, _ = w.Write(doc)
}

// draftInvoice routes a natural language billing request to the AI agent and
// returns prefilled wizard input for review. Nothing is persisted.
func (h *Handler) draftInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, r, "text is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	draft, err := h.svc.DraftInvoice(r.Context(), req.Text)
	if err != nil {
		writeError(w, r, err.Error(), "AI_ERROR", http.StatusBadGateway)
		return
	}
	writeJSON(w, draft)
}
