package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"salonbook-backend/models"
	"salonbook-backend/repository"
	"salonbook-backend/services"
	"salonbook-backend/utils"
)

type CreateExpenseInput struct {
	Date     string   `json:"date"`
	Category string   `json:"category" binding:"required"`
	Amount   *float64 `json:"amount" binding:"required"`
	Notes    string   `json:"notes"`
}

type ExpenseController struct {
	expenses  *repository.ExpenseRepository
	summaries *services.SummaryService
	loc       *time.Location
	now       func() time.Time
}

func NewExpenseController(expenses *repository.ExpenseRepository, summaries *services.SummaryService) *ExpenseController {
	return &ExpenseController{
		expenses:  expenses,
		summaries: summaries,
		loc:       summaries.Location(),
		now:       time.Now,
	}
}

func (ec *ExpenseController) AddExpense(c *gin.Context) {
	var input CreateExpenseInput
	if !bindJSON(c, &input) {
		return
	}
	ctx := c.Request.Context()

	if *input.Amount < 0 {
		utils.RespondWithAppError(c, utils.InvalidInput("Amount must not be negative"))
		return
	}

	date := ec.now()
	if raw := strings.TrimSpace(input.Date); raw != "" {
		parsed, err := utils.ParseDate(raw, ec.loc)
		if err != nil {
			utils.RespondWithAppError(c, utils.InvalidInput("Invalid date: "+err.Error()))
			return
		}
		date = parsed
	}

	expense := models.Expense{
		Date:     date.UTC(),
		Category: strings.TrimSpace(input.Category),
		Amount:   *input.Amount,
		Notes:    input.Notes,
	}
	if err := ec.expenses.Create(ctx, &expense); err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to create expense", err))
		return
	}
	ec.summaries.Invalidate(ctx)

	c.JSON(http.StatusCreated, expense)
}

// GetExpenses lists expenses newest first, optionally between from and to.
func (ec *ExpenseController) GetExpenses(c *gin.Context) {
	rng, err := services.ResolveRange(c.Query("from"), c.Query("to"), ec.loc, ec.now())
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	var filter repository.ExpenseFilter
	if rng.Filtered() {
		filter.From, filter.To = &rng.Start, &rng.End
	}

	expenses, err := ec.expenses.List(c.Request.Context(), filter)
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to retrieve expenses", err))
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func (ec *ExpenseController) DeleteExpense(c *gin.Context) {
	id, ok := pathID(c, "id", "Expense not found")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if err := ec.expenses.Delete(ctx, id); err != nil {
		utils.RespondWithAppError(c, storeError(err, "Expense not found", "", "Failed to delete expense"))
		return
	}
	ec.summaries.Invalidate(ctx)

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted"})
}
