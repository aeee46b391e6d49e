package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// SummaryHandler serves the monthly dashboard and the annual overview.
type SummaryHandler struct {
	summaryService services.SummaryServicer
	location       *time.Location
	now            func() time.Time
}

// NewSummaryHandler creates a new SummaryHandler. Omitted periods default to
// the current month in loc.
func NewSummaryHandler(summaryService services.SummaryServicer, loc *time.Location) *SummaryHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SummaryHandler{summaryService: summaryService, location: loc, now: time.Now}
}

func (h *SummaryHandler) today() time.Time {
	return h.now().In(h.location)
}

// GetMonthlySummary returns the dashboard of one month.
// @Summary     Monthly summary
// @Description Filtered records, credit card invoices, envelope consumption, totals, chart series, alerts and savings position of a month
// @Tags        summary
// @Produce     json
// @Security    BearerAuth
// @Param       year  query int false "Year (default current)"
// @Param       month query int false "Month 1-12 (default current)"
// @Success     200 {object} MonthlySummaryResponse "Monthly summary"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /summary/monthly [get]
func (h *SummaryHandler) GetMonthlySummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	period, err := parsePeriod(c, h.today())
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.summaryService.GetMonthlySummary(c.Request.Context(), userID, period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newMonthlySummaryResponse(summary))
}

// GetAnnualOverview returns the aggregates of a calendar year.
// @Summary     Annual overview
// @Description Yearly income, outflow, savings rate, monthly cash flow, spending distribution and savings evolution
// @Tags        summary
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Year (default current)"
// @Success     200 {object} AnnualOverviewResponse "Annual overview"
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /summary/annual [get]
func (h *SummaryHandler) GetAnnualOverview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year := h.today().Year()
	if v := c.Query("year"); v != "" {
		if year, err = strconv.Atoi(v); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidPeriod, "year must be a number"))
			return
		}
	}

	overview, err := h.summaryService.GetAnnualOverview(c.Request.Context(), userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAnnualOverviewResponse(overview))
}
