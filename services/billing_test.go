package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"salonbook-backend/models"
	"salonbook-backend/utils"
)

type fakeClients struct {
	active map[uuid.UUID]bool
	err    error
}

func (f *fakeClients) ExistsActive(_ context.Context, id uuid.UUID) (bool, error) {
	return f.active[id], f.err
}

type fakeServices struct {
	catalog map[uuid.UUID]models.Service
}

func (f *fakeServices) FindActiveByIDs(_ context.Context, ids []uuid.UUID) ([]models.Service, error) {
	var out []models.Service
	for _, id := range ids {
		if svc, ok := f.catalog[id]; ok && svc.Status.IsActive() {
			out = append(out, svc)
		}
	}
	return out, nil
}

type fakeVisitWriter struct {
	created []*models.Visit
	err     error
}

func (f *fakeVisitWriter) Create(_ context.Context, visit *models.Visit) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, visit)
	return nil
}

type billingFixture struct {
	svc      *BillingService
	visits   *fakeVisitWriter
	clientID uuid.UUID
	haircut  models.Service
	color    models.Service
	retired  models.Service
}

func newBillingFixture() *billingFixture {
	f := &billingFixture{
		clientID: uuid.New(),
		haircut:  models.Service{ID: uuid.New(), Name: "Haircut", Price: 500, Status: models.StatusActive},
		color:    models.Service{ID: uuid.New(), Name: "Color", Price: 300, Status: models.StatusActive},
		retired:  models.Service{ID: uuid.New(), Name: "Perm", Price: 900, Status: models.StatusInactive},
		visits:   &fakeVisitWriter{},
	}
	clients := &fakeClients{active: map[uuid.UUID]bool{f.clientID: true}}
	services := &fakeServices{catalog: map[uuid.UUID]models.Service{
		f.haircut.ID: f.haircut,
		f.color.ID:   f.color,
		f.retired.ID: f.retired,
	}}
	f.svc = NewBillingService(clients, services, f.visits, time.UTC)
	f.svc.now = func() time.Time { return time.Date(2025, 12, 1, 15, 0, 0, 0, time.UTC) }
	return f
}

func price(v float64) *float64 { return &v }

func TestCreateVisit_OverrideAndDefaultPrices(t *testing.T) {
	f := newBillingFixture()

	visit, err := f.svc.CreateVisit(context.Background(), CreateVisitInput{
		ClientID: f.clientID.String(),
		Services: []ServiceSelection{
			{ServiceID: f.haircut.ID.String(), ChargedPrice: price(450)},
			{ServiceID: f.color.ID.String()},
		},
	})
	if err != nil {
		t.Fatalf("CreateVisit() error = %v", err)
	}

	if visit.TotalAmount != 750 {
		t.Errorf("TotalAmount = %v, want 750", visit.TotalAmount)
	}
	if len(visit.Services) != 2 {
		t.Fatalf("got %d lines, want 2", len(visit.Services))
	}

	first, second := visit.Services[0], visit.Services[1]
	if first.Name != "Haircut" || first.BasePrice != 500 || first.ChargedPrice != 450 {
		t.Errorf("first line = %+v", first)
	}
	if second.Name != "Color" || second.BasePrice != 300 || second.ChargedPrice != 300 {
		t.Errorf("second line = %+v", second)
	}
	if first.Position != 0 || second.Position != 1 {
		t.Errorf("positions = %d, %d", first.Position, second.Position)
	}
	if !visit.VisitDate.Equal(f.svc.now()) {
		t.Errorf("VisitDate = %v, want now", visit.VisitDate)
	}
	if len(f.visits.created) != 1 {
		t.Errorf("expected one write, got %d", len(f.visits.created))
	}
}

func TestCreateVisit_TotalEqualsSumOfLines(t *testing.T) {
	f := newBillingFixture()

	visit, err := f.svc.CreateVisit(context.Background(), CreateVisitInput{
		ClientID: f.clientID.String(),
		Services: []ServiceSelection{
			{ServiceID: f.haircut.ID.String(), ChargedPrice: price(0.1)},
			{ServiceID: f.color.ID.String(), ChargedPrice: price(0.2)},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if visit.TotalAmount != 0.3 {
		t.Errorf("TotalAmount = %v, want 0.3", visit.TotalAmount)
	}
	var sum float64
	for _, l := range visit.Services {
		if l.LineTotal != l.ChargedPrice {
			t.Errorf("line total %v != charged %v", l.LineTotal, l.ChargedPrice)
		}
		sum += l.LineTotal
	}
	if sum < 0.29 || sum > 0.31 {
		t.Errorf("sum of lines = %v", sum)
	}
}

func TestCreateVisit_ExplicitDate(t *testing.T) {
	f := newBillingFixture()
	loc := time.FixedZone("UTC+5", 5*60*60)
	when := time.Date(2025, 11, 30, 10, 0, 0, 0, loc)

	visit, err := f.svc.CreateVisit(context.Background(), CreateVisitInput{
		ClientID:  f.clientID.String(),
		VisitDate: "2025-11-30T10:00:00+05:00",
		Services:  []ServiceSelection{{ServiceID: f.haircut.ID.String()}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !visit.VisitDate.Equal(when) || visit.VisitDate.Location() != time.UTC {
		t.Errorf("VisitDate = %v, want %v stored as UTC", visit.VisitDate, when)
	}
}

func TestCreateVisit_Rejections(t *testing.T) {
	f := newBillingFixture()

	tests := []struct {
		name    string
		input   CreateVisitInput
		kind    utils.ErrorKind
		message string
	}{
		{
			name:    "missing client",
			input:   CreateVisitInput{Services: []ServiceSelection{{ServiceID: f.haircut.ID.String()}}},
			kind:    utils.KindInvalidInput,
			message: "clientId is required",
		},
		{
			name:    "unknown client",
			input:   CreateVisitInput{ClientID: uuid.NewString(), Services: []ServiceSelection{{ServiceID: f.haircut.ID.String()}}},
			kind:    utils.KindNotFound,
			message: "Client not found",
		},
		{
			name:    "malformed client id",
			input:   CreateVisitInput{ClientID: "abc", Services: []ServiceSelection{{ServiceID: f.haircut.ID.String()}}},
			kind:    utils.KindNotFound,
			message: "Client not found",
		},
		{
			name:    "no services",
			input:   CreateVisitInput{ClientID: f.clientID.String()},
			kind:    utils.KindInvalidInput,
			message: "At least one service is required",
		},
		{
			name: "inactive service",
			input: CreateVisitInput{ClientID: f.clientID.String(), Services: []ServiceSelection{
				{ServiceID: f.haircut.ID.String()},
				{ServiceID: f.retired.ID.String()},
			}},
			kind:    utils.KindInvalidInput,
			message: "Invalid or inactive service",
		},
		{
			name:    "unknown service",
			input:   CreateVisitInput{ClientID: f.clientID.String(), Services: []ServiceSelection{{ServiceID: uuid.NewString()}}},
			kind:    utils.KindInvalidInput,
			message: "Invalid or inactive service",
		},
		{
			name:    "malformed service id",
			input:   CreateVisitInput{ClientID: f.clientID.String(), Services: []ServiceSelection{{ServiceID: "haircut"}}},
			kind:    utils.KindInvalidInput,
			message: "Invalid or inactive service",
		},
		{
			name:    "unknown client with bad date",
			input:   CreateVisitInput{ClientID: uuid.NewString(), VisitDate: "30/11/2025", Services: []ServiceSelection{{ServiceID: f.haircut.ID.String()}}},
			kind:    utils.KindNotFound,
			message: "Client not found",
		},
		{
			name:    "unknown service with bad date",
			input:   CreateVisitInput{ClientID: f.clientID.String(), VisitDate: "30/11/2025", Services: []ServiceSelection{{ServiceID: uuid.NewString()}}},
			kind:    utils.KindInvalidInput,
			message: "Invalid or inactive service",
		},
		{
			name: "repeated service",
			input: CreateVisitInput{ClientID: f.clientID.String(), Services: []ServiceSelection{
				{ServiceID: f.haircut.ID.String()},
				{ServiceID: f.haircut.ID.String()},
			}},
			kind:    utils.KindInvalidInput,
			message: "Invalid or inactive service",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateVisit(context.Background(), tt.input)
			var appErr *utils.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected *AppError, got %v", err)
			}
			if appErr.Kind != tt.kind || appErr.Message != tt.message {
				t.Errorf("got %s %q, want %s %q", appErr.Kind, appErr.Message, tt.kind, tt.message)
			}
		})
	}

	if len(f.visits.created) != 0 {
		t.Errorf("rejected requests wrote %d visits", len(f.visits.created))
	}
}

func TestCreateVisit_BadDateAfterCatalogChecks(t *testing.T) {
	f := newBillingFixture()

	_, err := f.svc.CreateVisit(context.Background(), CreateVisitInput{
		ClientID:  f.clientID.String(),
		VisitDate: "30/11/2025",
		Services:  []ServiceSelection{{ServiceID: f.haircut.ID.String()}},
	})
	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %v", err)
	}
	if appErr.Kind != utils.KindInvalidInput || !strings.HasPrefix(appErr.Message, "Invalid visitDate") {
		t.Errorf("got %s %q", appErr.Kind, appErr.Message)
	}
	if len(f.visits.created) != 0 {
		t.Errorf("bad date wrote %d visits", len(f.visits.created))
	}
}

func TestCreateVisit_StoreFailureIsInternal(t *testing.T) {
	f := newBillingFixture()
	f.visits.err = errors.New("connection reset")

	_, err := f.svc.CreateVisit(context.Background(), CreateVisitInput{
		ClientID: f.clientID.String(),
		Services: []ServiceSelection{{ServiceID: f.haircut.ID.String()}},
	})
	if utils.KindOf(err) != utils.KindInternal {
		t.Fatalf("kind = %s, want internal", utils.KindOf(err))
	}
}

func TestPriceLines_KeepsSelectionOrder(t *testing.T) {
	a := models.Service{ID: uuid.New(), Name: "A", Price: 10}
	b := models.Service{ID: uuid.New(), Name: "B", Price: 20}
	catalog := map[string]models.Service{a.ID.String(): a, b.ID.String(): b}

	lines, total := PriceLines([]ServiceSelection{
		{ServiceID: b.ID.String()},
		{ServiceID: a.ID.String(), ChargedPrice: price(5)},
	}, catalog)

	if total != 25 {
		t.Errorf("total = %v, want 25", total)
	}
	if lines[0].Name != "B" || lines[1].Name != "A" {
		t.Errorf("lines out of order: %s, %s", lines[0].Name, lines[1].Name)
	}
}
