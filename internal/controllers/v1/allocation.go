package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moneyfold/backend/internal/httperror"
	"github.com/moneyfold/backend/internal/httputil"
	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/internal/types"
	mf_uuid "github.com/moneyfold/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

// RegisterAllocationRoutes registers the routes for allocations with the
// RouterGroup that is passed.
func (co Controller) RegisterAllocationRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", co.OptionsAllocations)
		r.GET("", co.GetAllocations)
		r.POST("", co.CreateAllocation)
	}

	{
		r.OPTIONS("/:id", co.OptionsAllocationDetail)
		r.PATCH("/:id", co.UpdateAllocation)
		r.DELETE("/:id", co.DeleteAllocation)
	}
}

func (co Controller) OptionsAllocations(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func (co Controller) OptionsAllocationDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	err = co.db().First(&models.Allocation{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// GetAllocations returns allocations, optionally filtered by month.
func (co Controller) GetAllocations(c *gin.Context) {
	var query QueryMonth
	err := c.Bind(&query)
	if err != nil {
		abort(c, err)
		return
	}

	q := co.db()
	if !query.Month.IsZero() {
		q = q.Where("month = ?", types.MonthOf(query.Month))
	}

	var allocations []models.Allocation
	err = q.Find(&allocations).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, allocations)
}

type AllocationEditable struct {
	Month      types.Month     `json:"month" binding:"required" example:"2026-03"`
	EnvelopeID mf_uuid.UUID    `json:"envelopeId" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
}

// CreateAllocation budgets an amount for an envelope in a month. There can
// only be one allocation per envelope and month.
func (co Controller) CreateAllocation(c *gin.Context) {
	var editable AllocationEditable
	err := c.ShouldBindJSON(&editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	allocation := models.Allocation{
		Month:      editable.Month,
		EnvelopeID: editable.EnvelopeID.UUID,
		Amount:     editable.Amount,
	}

	err = co.engine.CreateAllocation(c.Request.Context(), &allocation)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, allocation)
}

// UpdateAllocation updates an allocation.
func (co Controller) UpdateAllocation(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	var allocation models.Allocation
	err = co.db().First(&allocation, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	var editable AllocationEditable
	err = c.ShouldBindJSON(&editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	allocation.Month = editable.Month
	allocation.EnvelopeID = editable.EnvelopeID.UUID
	allocation.Amount = editable.Amount

	outcome, err := co.engine.UpdateEntity(c.Request.Context(), &allocation)
	if err != nil {
		abort(c, err)
		return
	}

	c.Header("Sync-Outcome", string(outcome))
	c.JSON(http.StatusOK, allocation)
}

// DeleteAllocation deletes an allocation.
func (co Controller) DeleteAllocation(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	var allocation models.Allocation
	err = co.db().First(&allocation, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	outcome, err := co.engine.DeleteEntity(c.Request.Context(), &allocation)
	if err != nil {
		abort(c, err)
		return
	}

	c.Header("Sync-Outcome", string(outcome))
	c.JSON(http.StatusNoContent, nil)
}
