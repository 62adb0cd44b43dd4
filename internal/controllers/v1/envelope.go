package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moneyfold/backend/internal/httperror"
	"github.com/moneyfold/backend/internal/httputil"
	"github.com/moneyfold/backend/internal/ledger"
	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/internal/types"
	mf_uuid "github.com/moneyfold/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

// RegisterEnvelopeRoutes registers the routes for envelopes with the
// RouterGroup that is passed.
func (co Controller) RegisterEnvelopeRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", co.OptionsEnvelopes)
		r.GET("", co.GetEnvelopes)
		r.POST("", co.CreateEnvelope)
		r.POST("/reorder", co.ReorderEnvelopes)
	}

	{
		r.OPTIONS("/:id", co.OptionsEnvelopeDetail)
		r.GET("/:id", co.GetEnvelope)
		r.GET("/:id/balance", co.GetEnvelopeBalance)
		r.PATCH("/:id", co.UpdateEnvelope)
		r.DELETE("/:id", co.DeleteEnvelope)
	}
}

func (co Controller) OptionsEnvelopes(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func (co Controller) OptionsEnvelopeDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	err = co.db().First(&models.Envelope{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

type EnvelopeQueryFilter struct {
	Name     string `form:"name"`
	Archived *bool  `form:"archived"`
}

// GetEnvelopes returns all envelopes, ordered by their sort order.
func (co Controller) GetEnvelopes(c *gin.Context) {
	var filter EnvelopeQueryFilter
	err := c.Bind(&filter)
	if err != nil {
		abort(c, err)
		return
	}

	q := co.db().Order("sort_order ASC, name ASC")
	if filter.Name != "" {
		q = q.Where("name = ?", filter.Name)
	}

	if filter.Archived != nil {
		q = q.Where("archived = ?", *filter.Archived)
	}

	var envelopes []models.Envelope
	err = q.Find(&envelopes).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, envelopes)
}

func (co Controller) GetEnvelope(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	var envelope models.Envelope
	err = co.db().First(&envelope, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, envelope)
}

type BalanceResponse struct {
	EnvelopeID mf_uuid.UUID    `json:"envelopeId"`
	Month      *types.Month    `json:"month,omitempty"`
	Balance    decimal.Decimal `json:"balance"`
}

// GetEnvelopeBalance returns the derived balance of an envelope. The month
// query parameter is required for regular envelopes and ignored for
// piggybanks.
func (co Controller) GetEnvelopeBalance(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	var query QueryMonth
	err = c.Bind(&query)
	if err != nil {
		abort(c, err)
		return
	}

	var month types.Month
	var monthRef *types.Month
	if !query.Month.IsZero() {
		month = types.MonthOf(query.Month)
		monthRef = &month
	}

	balance, err := ledger.Balance(co.db(), uri.ID.UUID, month)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{
		EnvelopeID: uri.ID,
		Month:      monthRef,
		Balance:    balance,
	})
}

type EnvelopeEditable struct {
	Name         string              `json:"name" binding:"required" example:"Groceries"`
	Archived     bool                `json:"archived"`
	SortOrder    uint                `json:"sortOrder"`
	Piggybank    bool                `json:"piggybank"`
	BudgetTarget decimal.NullDecimal `json:"budgetTarget"`
}

// CreateEnvelope creates a new envelope through the optimistic-update path.
func (co Controller) CreateEnvelope(c *gin.Context) {
	var editable EnvelopeEditable
	err := c.ShouldBindJSON(&editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	envelope := models.Envelope{
		UserID:       co.engine.UserID(),
		Name:         editable.Name,
		Archived:     editable.Archived,
		SortOrder:    editable.SortOrder,
		Piggybank:    editable.Piggybank,
		BudgetTarget: editable.BudgetTarget,
	}

	outcome, err := co.engine.CreateEntity(c.Request.Context(), &envelope)
	if err != nil {
		abort(c, err)
		return
	}

	c.Header("Sync-Outcome", string(outcome))
	c.JSON(http.StatusCreated, envelope)
}

// UpdateEnvelope updates an envelope through the optimistic-update path.
func (co Controller) UpdateEnvelope(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	var envelope models.Envelope
	err = co.db().First(&envelope, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	var editable EnvelopeEditable
	err = c.ShouldBindJSON(&editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	envelope.Name = editable.Name
	envelope.Archived = editable.Archived
	envelope.SortOrder = editable.SortOrder
	envelope.Piggybank = editable.Piggybank
	envelope.BudgetTarget = editable.BudgetTarget

	outcome, err := co.engine.UpdateEntity(c.Request.Context(), &envelope)
	if err != nil {
		abort(c, err)
		return
	}

	c.Header("Sync-Outcome", string(outcome))
	c.JSON(http.StatusOK, envelope)
}

// DeleteEnvelope deletes an envelope. Transactions referencing it are left in
// place, DELETE /v1/cleanup removes orphaned references explicitly.
func (co Controller) DeleteEnvelope(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	var envelope models.Envelope
	err = co.db().First(&envelope, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	outcome, err := co.engine.DeleteEntity(c.Request.Context(), &envelope)
	if err != nil {
		abort(c, err)
		return
	}

	c.Header("Sync-Outcome", string(outcome))
	c.JSON(http.StatusNoContent, nil)
}

type ReorderRequest struct {
	IDs []mf_uuid.UUID `json:"ids" binding:"required"`
}

// ReorderEnvelopes persists a new display order. Envelopes not listed keep
// their current sort order.
func (co Controller) ReorderEnvelopes(c *gin.Context) {
	var request ReorderRequest
	err := c.ShouldBindJSON(&request)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	for i, id := range request.IDs {
		var envelope models.Envelope
		err = co.db().First(&envelope, "id = ?", id.UUID).Error
		if err != nil {
			abort(c, err)
			return
		}

		envelope.SortOrder = uint(i)
		_, err = co.engine.UpdateEntity(c.Request.Context(), &envelope)
		if err != nil {
			abort(c, err)
			return
		}
	}

	c.JSON(http.StatusNoContent, nil)
}
