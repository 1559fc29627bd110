package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"crm-console/internal/app"
	"crm-console/internal/core"
)

// fakeCustomers is an in-memory CustomerService for exercising the save path
// without a database.
type fakeCustomers struct {
	byID   map[int]*core.Customer
	nextID int
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{byID: make(map[int]*core.Customer), nextID: 1}
}

func (f *fakeCustomers) CreateCustomer(ctx context.Context, c *core.Customer) (*core.Customer, error) {
	stored := *c
	stored.ID = f.nextID
	f.nextID++
	f.byID[stored.ID] = &stored
	return &stored, nil
}

func (f *fakeCustomers) UpdateCustomer(ctx context.Context, id int, c *core.Customer) (*core.Customer, error) {
	existing, ok := f.byID[id]
	if !ok {
		return nil, errors.New("customer not found")
	}
	stored := *c
	stored.ID = id
	stored.CreatedAt = existing.CreatedAt
	f.byID[id] = &stored
	return &stored, nil
}

func (f *fakeCustomers) GetCustomer(ctx context.Context, id int) (*core.Customer, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, errors.New("customer not found")
	}
	return c, nil
}

func (f *fakeCustomers) GetCustomers(ctx context.Context) ([]core.Customer, error) {
	var out []core.Customer
	for _, c := range f.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCustomers) DeleteCustomer(ctx context.Context, id int) error {
	if _, ok := f.byID[id]; !ok {
		return errors.New("customer not found")
	}
	delete(f.byID, id)
	return nil
}

// fakeUsers serves a single fixed user.
type fakeUsers struct {
	user *core.User
}

func (f *fakeUsers) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	if f.user != nil && f.user.Username == username {
		return f.user, nil
	}
	return nil, errors.New("user not found")
}

func (f *fakeUsers) GetUserByID(ctx context.Context, id int) (*core.User, error) {
	if f.user != nil && f.user.ID == id {
		return f.user, nil
	}
	return nil, errors.New("user not found")
}

func (f *fakeUsers) CreateUser(ctx context.Context, u *core.User) (*core.User, error) {
	f.user = u
	return u, nil
}

func newService(customers core.CustomerService, users core.UserService) app.ApplicationService {
	return app.NewAppService(nil, customers, nil, nil, nil, nil, users, nil, nil)
}

func TestSaveCustomer_CreateAndUpdate(t *testing.T) {
	customers := newFakeCustomers()
	svc := newService(customers, nil)
	ctx := context.Background()

	created, err := svc.SaveCustomer(ctx, app.SaveRequest{
		Values: map[string]string{
			"name":   "Acme Corp",
			"email":  "sales@acme.test",
			"phone":  "0123456789",
			"tags":   "vip, partner",
			"status": "vip",
		},
	})
	if err != nil {
		t.Fatalf("SaveCustomer (create): %v", err)
	}
	if created.ID != 1 || created.Status != core.CustomerVIP {
		t.Fatalf("unexpected created customer: %+v", created)
	}
	if len(created.Tags) != 2 {
		t.Errorf("tags = %v, want the csv split into two", created.Tags)
	}
	if created.CreatedAt.IsZero() {
		t.Error("create must stamp createdAt")
	}

	// An update replaces the record wholesale but keeps its creation time.
	time.Sleep(time.Millisecond)
	updated, err := svc.SaveCustomer(ctx, app.SaveRequest{
		ID: created.ID,
		Values: map[string]string{
			"name":   "Acme Corporation",
			"email":  "sales@acme.test",
			"phone":  "0123456789",
			"status": "active",
		},
	})
	if err != nil {
		t.Fatalf("SaveCustomer (update): %v", err)
	}
	if updated.Name != "Acme Corporation" || updated.Status != core.CustomerActive {
		t.Errorf("unexpected updated customer: %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("createdAt changed on update: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("updatedAt did not advance: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
	}
	// Omitted optional fields fall back to schema defaults, not merged values.
	if len(updated.Tags) != 0 {
		t.Errorf("tags survived a save that omitted them: %v", updated.Tags)
	}
}

func TestSaveCustomer_ValidationError(t *testing.T) {
	svc := newService(newFakeCustomers(), nil)

	_, err := svc.SaveCustomer(context.Background(), app.SaveRequest{
		Values: map[string]string{
			"name":  "A",
			"email": "not-an-email",
		},
	})
	if err == nil {
		t.Fatal("expected a validation error")
	}

	var verr *app.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error is %T, want *app.ValidationError", err)
	}
	fields := make(map[string]bool)
	for _, fe := range verr.Fields {
		fields[fe.Field] = true
	}
	for _, want := range []string{"name", "email", "phone"} {
		if !fields[want] {
			t.Errorf("validation error is missing field %q (got %v)", want, verr.Fields)
		}
	}
}

func TestSaveCustomer_UpdateMissingID(t *testing.T) {
	svc := newService(newFakeCustomers(), nil)

	_, err := svc.SaveCustomer(context.Background(), app.SaveRequest{
		ID: 42,
		Values: map[string]string{
			"name":  "Acme Corp",
			"email": "sales@acme.test",
			"phone": "0123456789",
		},
	})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v, want not found", err)
	}
	var verr *app.ValidationError
	if errors.As(err, &verr) {
		t.Error("a missing row must not surface as a validation error")
	}
}

func TestAuthenticateUser(t *testing.T) {
	users := &fakeUsers{user: &core.User{
		ID:           3,
		Username:     "admin",
		Email:        "admin@crm.test",
		PasswordHash: core.HashPassword("s3cret"),
		Role:         "admin",
		IsActive:     true,
	}}
	svc := newService(nil, users)
	ctx := context.Background()

	sess, err := svc.AuthenticateUser(ctx, "admin", "s3cret")
	if err != nil {
		t.Fatalf("AuthenticateUser: %v", err)
	}
	if sess.UserID != 3 || sess.Role != "admin" {
		t.Errorf("unexpected session: %+v", sess)
	}

	// Wrong password, unknown user and inactive account all collapse to the
	// same opaque message.
	for _, tc := range []struct{ username, password string }{
		{"admin", "wrong"},
		{"ghost", "s3cret"},
	} {
		if _, err := svc.AuthenticateUser(ctx, tc.username, tc.password); err == nil || err.Error() != "invalid credentials" {
			t.Errorf("AuthenticateUser(%q, %q) = %v, want invalid credentials", tc.username, tc.password, err)
		}
	}

	users.user.IsActive = false
	if _, err := svc.AuthenticateUser(ctx, "admin", "s3cret"); err == nil || err.Error() != "invalid credentials" {
		t.Errorf("inactive account: %v, want invalid credentials", err)
	}
}

func TestDraftInvoice_NotConfigured(t *testing.T) {
	svc := newService(nil, nil)
	if _, err := svc.DraftInvoice(context.Background(), "bill Acme for 2 widgets"); err == nil {
		t.Fatal("DraftInvoice must fail when no AI agent is configured")
	}
}

func TestValidationError_Message(t *testing.T) {
	verr := &app.ValidationError{}
	if verr.Error() == "" {
		t.Error("an empty validation error still needs a message")
	}
}
