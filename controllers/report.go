package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"salonbook-backend/services"
	"salonbook-backend/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportController handles all reporting functions
type ReportController struct {
	summaries *services.SummaryService
}

func NewReportController(summaries *services.SummaryService) *ReportController {
	return &ReportController{summaries: summaries}
}

// GetSummary returns earnings, expenses and profit for the optional
// from/to range, with a per-day series and per-category expenses.
func (rc *ReportController) GetSummary(c *gin.Context) {
	summary, err := rc.summaries.Summary(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ExportSummary returns the same report as an XLSX workbook.
func (rc *ReportController) ExportSummary(c *gin.Context) {
	rng, err := rc.summaries.Range(c.Query("from"), c.Query("to"))
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	summary, err := rc.summaries.SummaryFor(c.Request.Context(), rng)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := services.WriteSummaryXLSX(&buf, summary); err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to export summary", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.SummaryFilename(rng)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
