package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moneyfold/backend/internal/httperror"
	"github.com/moneyfold/backend/internal/httputil"
	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/internal/types"
	mf_uuid "github.com/moneyfold/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

// RegisterTransactionRoutes registers the routes for transactions with the
// RouterGroup that is passed.
func (co Controller) RegisterTransactionRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", co.OptionsTransactions)
		r.GET("", co.GetTransactions)
		r.POST("", co.CreateTransaction)
	}

	{
		r.OPTIONS("/:id", co.OptionsTransactionDetail)
		r.GET("/:id", co.GetTransaction)
		r.PATCH("/:id", co.UpdateTransaction)
		r.PATCH("/:id/reconciled", co.SetTransactionReconciled)
		r.DELETE("/:id", co.DeleteTransaction)
	}
}

func (co Controller) OptionsTransactions(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func (co Controller) OptionsTransactionDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	err = co.db().First(&models.Transaction{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

type TransactionQueryFilter struct {
	QueryMonth
	Envelope   mf_uuid.UUID `form:"envelope"`
	Type       string       `form:"type"`
	Reconciled *bool        `form:"reconciled"`
}

// GetTransactions returns transactions, newest first.
func (co Controller) GetTransactions(c *gin.Context) {
	var filter TransactionQueryFilter
	err := c.Bind(&filter)
	if err != nil {
		abort(c, err)
		return
	}

	q := co.db().Order("datetime(transactions.date) DESC, datetime(transactions.created_at) DESC")

	if !filter.Month.IsZero() {
		q = q.Where("month = ?", types.MonthOf(filter.Month))
	}

	if filter.Envelope != mf_uuid.Nil {
		q = q.Where("envelope_id = ?", filter.Envelope.UUID)
	}

	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	if filter.Reconciled != nil {
		q = q.Where("reconciled = ?", *filter.Reconciled)
	}

	var transactions []models.Transaction
	err = q.Find(&transactions).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

func (co Controller) GetTransaction(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	var transaction models.Transaction
	err = co.db().First(&transaction, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}

type TransactionEditable struct {
	EnvelopeID mf_uuid.UUID           `json:"envelopeId" binding:"required"`
	Type       models.TransactionType `json:"type" binding:"required"`
	Amount     decimal.Decimal        `json:"amount"`
	Date       time.Time              `json:"date"`
	Note       string                 `json:"note"`
	Merchant   string                 `json:"merchant"`
}

// CreateTransaction appends a transaction to the ledger through the
// optimistic-update path.
func (co Controller) CreateTransaction(c *gin.Context) {
	var editable TransactionEditable
	err := c.ShouldBindJSON(&editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	transaction := models.Transaction{
		EnvelopeID: editable.EnvelopeID.UUID,
		Type:       editable.Type,
		Amount:     editable.Amount,
		Date:       editable.Date,
		Note:       editable.Note,
		Merchant:   editable.Merchant,
	}

	err = co.engine.CreateTransaction(c.Request.Context(), &transaction)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, transaction)
}

// UpdateTransaction updates a transaction. Reconciled transactions are
// immutable until they are un-reconciled.
func (co Controller) UpdateTransaction(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	var transaction models.Transaction
	err = co.db().First(&transaction, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	if transaction.Reconciled {
		abort(c, fmt.Errorf("%w: transaction %s", models.ErrTransactionReconciled, transaction.ID))
		return
	}

	var editable TransactionEditable
	err = c.ShouldBindJSON(&editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	transaction.EnvelopeID = editable.EnvelopeID.UUID
	transaction.Type = editable.Type
	transaction.Amount = editable.Amount
	transaction.Date = editable.Date
	transaction.Month = types.Month{}
	transaction.Note = editable.Note
	transaction.Merchant = editable.Merchant

	outcome, err := co.engine.UpdateEntity(c.Request.Context(), &transaction)
	if err != nil {
		abort(c, err)
		return
	}

	c.Header("Sync-Outcome", string(outcome))
	c.JSON(http.StatusOK, transaction)
}

type ReconcileRequest struct {
	Reconciled *bool `json:"reconciled" binding:"required"`
}

// SetTransactionReconciled toggles the reconciled flag. This is the only
// permitted change on a reconciled transaction.
func (co Controller) SetTransactionReconciled(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	var transaction models.Transaction
	err = co.db().First(&transaction, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	var request ReconcileRequest
	err = c.ShouldBindJSON(&request)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	transaction.Reconciled = *request.Reconciled

	outcome, err := co.engine.UpdateEntity(c.Request.Context(), &transaction)
	if err != nil {
		abort(c, err)
		return
	}

	c.Header("Sync-Outcome", string(outcome))
	c.JSON(http.StatusOK, transaction)
}

// DeleteTransaction deletes a transaction.
func (co Controller) DeleteTransaction(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	var transaction models.Transaction
	err = co.db().First(&transaction, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	outcome, err := co.engine.DeleteEntity(c.Request.Context(), &transaction)
	if err != nil {
		abort(c, err)
		return
	}

	c.Header("Sync-Outcome", string(outcome))
	c.JSON(http.StatusNoContent, nil)
}
