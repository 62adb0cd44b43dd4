package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moneyfold/backend/internal/httputil"
	"github.com/moneyfold/backend/internal/ledger"
	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/internal/rollover"
	"github.com/moneyfold/backend/internal/types"
	"github.com/shopspring/decimal"
)

// RegisterMonthRoutes registers the routes for months with the RouterGroup
// that is passed.
func (co Controller) RegisterMonthRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/:month", co.OptionsMonthDetail)
	r.GET("/:month", co.GetMonth)
	r.POST("/:month/rollover", co.RolloverMonth)
}

func (co Controller) OptionsMonthDetail(c *gin.Context) {
	httputil.OptionsGet(c)
}

type EnvelopeMonth struct {
	models.Envelope
	Allocated decimal.Decimal `json:"allocated"`
	Balance   decimal.Decimal `json:"balance"`
}

type MonthResponse struct {
	Month         types.Month           `json:"month"`
	IncomeSources []models.IncomeSource `json:"incomeSources"`
	Envelopes     []EnvelopeMonth       `json:"envelopes"`
}

// GetMonth returns the budgeting data of one month: income sources,
// envelopes with their allocation and derived balance.
func (co Controller) GetMonth(c *gin.Context) {
	var uri URIMonth
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	month := types.MonthOf(uri.Month)

	response := MonthResponse{Month: month, IncomeSources: []models.IncomeSource{}}
	err = co.db().Where("month = ?", month).Order("name ASC").Find(&response.IncomeSources).Error
	if err != nil {
		abort(c, err)
		return
	}

	var envelopes []models.Envelope
	err = co.db().Order("sort_order ASC, name ASC").Find(&envelopes).Error
	if err != nil {
		abort(c, err)
		return
	}

	response.Envelopes = make([]EnvelopeMonth, 0, len(envelopes))
	for _, envelope := range envelopes {
		balance, err := ledger.Balance(co.db(), envelope.ID, month)
		if err != nil {
			abort(c, err)
			return
		}

		var allocation models.Allocation
		allocated := decimal.Zero
		err = co.db().Where("month = ? AND envelope_id = ?", month, envelope.ID).First(&allocation).Error
		if err == nil {
			allocated = allocation.Amount
		}

		response.Envelopes = append(response.Envelopes, EnvelopeMonth{
			Envelope:  envelope,
			Allocated: allocated,
			Balance:   balance,
		})
	}

	c.JSON(http.StatusOK, response)
}

// RolloverMonth initializes the month from the one before it: income sources
// and allocations are copied and every allocated envelope is seeded with an
// initial deposit. The target month must be empty.
func (co Controller) RolloverMonth(c *gin.Context) {
	var uri URIMonth
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	result, err := rollover.CopyPreviousMonthAllocations(
		c.Request.Context(), co.db(), co.engine, co.engine.UserID(), types.MonthOf(uri.Month),
	)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
