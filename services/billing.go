// services/billing.go
package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"salonbook-backend/models"
	"salonbook-backend/utils"
)

type ClientLookup interface {
	ExistsActive(ctx context.Context, id uuid.UUID) (bool, error)
}

type ServiceLookup interface {
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Service, error)
}

type VisitWriter interface {
	Create(ctx context.Context, visit *models.Visit) error
}

// ServiceSelection is one requested line. A nil ChargedPrice bills the
// catalog price.
type ServiceSelection struct {
	ServiceID    string
	ChargedPrice *float64
}

// CreateVisitInput is a visit request. VisitDate is a calendar day or an
// RFC 3339 timestamp; empty means now.
type CreateVisitInput struct {
	ClientID  string
	VisitDate string
	Services  []ServiceSelection
	Notes     string
}

// BillingService turns a list of selected services into a persisted visit.
type BillingService struct {
	clients  ClientLookup
	services ServiceLookup
	visits   VisitWriter
	loc      *time.Location
	now      func() time.Time
}

// NewBillingService builds the calculator. Calendar-day visit dates are
// read as midnight in loc.
func NewBillingService(clients ClientLookup, services ServiceLookup, visits VisitWriter, loc *time.Location) *BillingService {
	return &BillingService{
		clients:  clients,
		services: services,
		visits:   visits,
		loc:      loc,
		now:      time.Now,
	}
}

// CreateVisit validates the request, prices every line and stores the
// visit. Validation stops at the first failed rule and nothing is written.
func (s *BillingService) CreateVisit(ctx context.Context, input CreateVisitInput) (*models.Visit, error) {
	clientRef := strings.TrimSpace(input.ClientID)
	if clientRef == "" {
		return nil, utils.InvalidInput("clientId is required")
	}
	clientID, err := uuid.Parse(clientRef)
	if err != nil {
		return nil, utils.NotFound("Client not found")
	}
	exists, err := s.clients.ExistsActive(ctx, clientID)
	if err != nil {
		return nil, utils.Internal("Failed to look up client", err)
	}
	if !exists {
		return nil, utils.NotFound("Client not found")
	}

	if len(input.Services) == 0 {
		return nil, utils.InvalidInput("At least one service is required")
	}

	catalog, err := s.resolveServices(ctx, input.Services)
	if err != nil {
		return nil, err
	}

	visitDate := s.now()
	if date := strings.TrimSpace(input.VisitDate); date != "" {
		visitDate, err = utils.ParseDate(date, s.loc)
		if err != nil {
			return nil, utils.InvalidInput("Invalid visitDate: " + err.Error())
		}
	}

	lines, total := PriceLines(input.Services, catalog)

	visit := &models.Visit{
		ClientID:    clientID,
		VisitDate:   visitDate.UTC(),
		Services:    lines,
		TotalAmount: total,
		Notes:       input.Notes,
	}
	if err := s.visits.Create(ctx, visit); err != nil {
		return nil, utils.Internal("Failed to create visit", err)
	}
	return visit, nil
}

// resolveServices loads the active services referenced by selections. The
// lookup is by distinct id, so unknown, inactive, malformed and repeated
// ids all surface as a count mismatch.
func (s *BillingService) resolveServices(ctx context.Context, selections []ServiceSelection) (map[string]models.Service, error) {
	invalid := utils.InvalidInput("Invalid or inactive service")

	ids := make([]uuid.UUID, 0, len(selections))
	seen := make(map[uuid.UUID]bool, len(selections))
	for _, sel := range selections {
		id, err := uuid.Parse(strings.TrimSpace(sel.ServiceID))
		if err != nil {
			return nil, invalid
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	found, err := s.services.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, utils.Internal("Failed to look up services", err)
	}
	if len(found) != len(selections) {
		return nil, invalid
	}

	catalog := make(map[string]models.Service, len(found))
	for _, svc := range found {
		catalog[svc.ID.String()] = svc
	}
	return catalog, nil
}

// PriceLines builds one visit line per selection, in order, and returns the
// lines with their sum. The charged price is the override when present and
// the catalog price otherwise. Every selection must be in catalog, keyed by
// the canonical id string.
func PriceLines(selections []ServiceSelection, catalog map[string]models.Service) ([]models.VisitLine, float64) {
	lines := make([]models.VisitLine, 0, len(selections))
	total := decimal.Zero

	for i, sel := range selections {
		svc := catalog[canonicalID(sel.ServiceID)]

		charged := svc.Price
		if sel.ChargedPrice != nil {
			charged = *sel.ChargedPrice
		}

		lines = append(lines, models.VisitLine{
			Position:     i,
			ServiceID:    svc.ID,
			Name:         svc.Name,
			BasePrice:    svc.Price,
			ChargedPrice: charged,
			LineTotal:    charged,
		})
		total = total.Add(decimal.NewFromFloat(charged))
	}

	return lines, total.InexactFloat64()
}

func canonicalID(raw string) string {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return id.String()
}
