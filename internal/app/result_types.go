package app

import "crm-console/internal/forms"

// UserSession is returned by AuthenticateUser.
type UserSession struct {
	UserID   int
	Username string
	Email    string
	Role     string
}

// DraftResult is returned by DraftInvoice: wizard input ready to load into
// an invoice session via Edit.
type DraftResult struct {
	Values map[string]string
	Items  []forms.LineItem
}
