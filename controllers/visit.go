// controllers/visit.go
package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"salonbook-backend/models"
	"salonbook-backend/repository"
	"salonbook-backend/services"
	"salonbook-backend/utils"
)

// PriceOverride is an optional charged price. Only a JSON number sets it;
// null, strings and other values leave the catalog price in effect.
type PriceOverride struct {
	Value *float64
}

func (p *PriceOverride) UnmarshalJSON(data []byte) error {
	p.Value = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	p.Value = &v
	return nil
}

func (p PriceOverride) MarshalJSON() ([]byte, error) {
	if p.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*p.Value)
}

// VisitServiceInput is one selected service of a new visit
type VisitServiceInput struct {
	ServiceID    string        `json:"serviceId"`
	ChargedPrice PriceOverride `json:"chargedPrice"`
}

// CreateVisitInput defines the expected JSON structure for creating a visit
type CreateVisitInput struct {
	ClientID  string              `json:"clientId"`
	VisitDate string              `json:"visitDate"`
	Services  []VisitServiceInput `json:"services"`
	Notes     string              `json:"notes"`
}

type VisitController struct {
	billing       *services.BillingService
	visits        *repository.VisitRepository
	summaries     *services.SummaryService
	notifications *services.NotificationService
}

// NewVisitController wires visit handlers. notifications may be nil, which
// disables receipts.
func NewVisitController(billing *services.BillingService, visits *repository.VisitRepository, summaries *services.SummaryService, notifications *services.NotificationService) *VisitController {
	return &VisitController{
		billing:       billing,
		visits:        visits,
		summaries:     summaries,
		notifications: notifications,
	}
}

// CreateVisit bills the selected services and stores the visit.
func (vc *VisitController) CreateVisit(c *gin.Context) {
	var input CreateVisitInput
	if !bindJSON(c, &input) {
		return
	}
	ctx := c.Request.Context()

	req := services.CreateVisitInput{
		ClientID:  input.ClientID,
		VisitDate: input.VisitDate,
		Notes:     input.Notes,
		Services:  make([]services.ServiceSelection, 0, len(input.Services)),
	}
	for _, s := range input.Services {
		req.Services = append(req.Services, services.ServiceSelection{
			ServiceID:    s.ServiceID,
			ChargedPrice: s.ChargedPrice.Value,
		})
	}

	visit, err := vc.billing.CreateVisit(ctx, req)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	vc.summaries.Invalidate(ctx)
	if vc.notifications != nil {
		vc.notifications.SendVisitReceipt(ctx, visit)
	}

	c.JSON(http.StatusCreated, visit)
}

// GetClientVisits lists a client's visits, newest first.
func (vc *VisitController) GetClientVisits(c *gin.Context) {
	clientID, ok := pathID(c, "clientId", "Client not found")
	if !ok {
		return
	}

	visits, err := vc.visits.ListByClient(c.Request.Context(), clientID)
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to retrieve visits", err))
		return
	}
	if visits == nil {
		visits = []models.Visit{}
	}
	c.JSON(http.StatusOK, visits)
}

// DeleteVisit flags the visit as deleted; it no longer counts in reports.
func (vc *VisitController) DeleteVisit(c *gin.Context) {
	id, ok := pathID(c, "visitId", "Visit not found")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if err := vc.visits.MarkDeleted(ctx, id); err != nil {
		utils.RespondWithAppError(c, storeError(err, "Visit not found", "", "Failed to delete visit"))
		return
	}
	vc.summaries.Invalidate(ctx)

	c.JSON(http.StatusOK, gin.H{"message": "Visit deleted"})
}
