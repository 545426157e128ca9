package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"salonbook-backend/repository"
	"salonbook-backend/utils"
)

const recentVisitLimit = 3

type DashboardOverview struct {
	ActiveClients   int64         `json:"activeClients"`
	MonthlyEarnings float64       `json:"monthlyEarnings"`
	MonthlyExpenses float64       `json:"monthlyExpenses"`
	MonthlyVisits   int64         `json:"monthlyVisits"`
	RecentVisits    []RecentVisit `json:"recentVisits"`
}

type RecentVisit struct {
	ClientName  string  `json:"clientName"`
	Services    string  `json:"services"`
	VisitDate   string  `json:"visitDate"` // e.g. "Today", "Yesterday"
	TotalAmount float64 `json:"totalAmount"`
}

type DashboardController struct {
	clients  *repository.ClientRepository
	visits   *repository.VisitRepository
	expenses *repository.ExpenseRepository
	loc      *time.Location
	now      func() time.Time
}

func NewDashboardController(clients *repository.ClientRepository, visits *repository.VisitRepository, expenses *repository.ExpenseRepository, loc *time.Location) *DashboardController {
	return &DashboardController{clients: clients, visits: visits, expenses: expenses, loc: loc, now: time.Now}
}

// GetDashboardOverview reports month-to-date figures and the latest visits.
func (dc *DashboardController) GetDashboardOverview(c *gin.Context) {
	ctx := c.Request.Context()
	now := dc.now().In(dc.loc)
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, dc.loc)

	activeClients, err := dc.clients.CountActive(ctx)
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to count clients", err))
		return
	}

	totals, err := dc.visits.Totals(ctx, firstOfMonth, now)
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to get monthly earnings", err))
		return
	}

	spent, err := dc.expenses.Total(ctx, firstOfMonth, now)
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to get monthly expenses", err))
		return
	}

	recent, err := dc.visits.Recent(ctx, recentVisitLimit)
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to get recent visits", err))
		return
	}

	overview := DashboardOverview{
		ActiveClients:   activeClients,
		MonthlyEarnings: totals.Total,
		MonthlyExpenses: spent,
		MonthlyVisits:   totals.Count,
		RecentVisits:    make([]RecentVisit, 0, len(recent)),
	}
	for _, v := range recent {
		overview.RecentVisits = append(overview.RecentVisits, RecentVisit{
			ClientName:  v.ClientName,
			Services:    strings.Join(v.ServiceNames, ", "),
			VisitDate:   daysAgoLabel(utils.DaysBetween(v.VisitDate.In(dc.loc), now)),
			TotalAmount: v.TotalAmount,
		})
	}

	c.JSON(http.StatusOK, overview)
}

func daysAgoLabel(days int) string {
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}
