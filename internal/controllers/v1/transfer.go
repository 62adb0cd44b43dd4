package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moneyfold/backend/internal/httperror"
	"github.com/moneyfold/backend/internal/httputil"
	"github.com/moneyfold/backend/internal/ledger"
	mf_uuid "github.com/moneyfold/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

// RegisterTransferRoutes registers the routes for transfers with the
// RouterGroup that is passed.
func (co Controller) RegisterTransferRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", co.OptionsTransfers)
	r.POST("", co.CreateTransfer)
	r.POST("/:id/retry", co.RetryTransfer)
}

func (co Controller) OptionsTransfers(c *gin.Context) {
	httputil.OptionsPost(c)
}

type TransferRequest struct {
	FromEnvelopeID mf_uuid.UUID    `json:"fromEnvelopeId" binding:"required"`
	ToEnvelopeID   mf_uuid.UUID    `json:"toEnvelopeId" binding:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Note           string          `json:"note"`
	Date           time.Time       `json:"date"`
}

// CreateTransfer moves an amount between two envelopes. A partial result
// with status 502 means the expense leg was recorded but the income leg
// failed, the client retries the missing leg via the retry endpoint.
func (co Controller) CreateTransfer(c *gin.Context) {
	var request TransferRequest
	err := c.ShouldBindJSON(&request)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	result, err := ledger.Transfer(
		c.Request.Context(), co.db(), co.engine, co.engine.UserID(),
		request.FromEnvelopeID.UUID, request.ToEnvelopeID.UUID,
		request.Amount, request.Note, request.Date,
	)
	if err != nil {
		if result.Expense != nil {
			// First leg recorded, second failed
			c.JSON(http.StatusBadGateway, result)
			return
		}

		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

type RetryTransferRequest struct {
	EnvelopeID mf_uuid.UUID `json:"envelopeId" binding:"required"`
}

// RetryTransfer creates the missing leg of a partial transfer.
func (co Controller) RetryTransfer(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	var request RetryTransferRequest
	err = c.ShouldBindJSON(&request)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	result, err := ledger.RetryLeg(c.Request.Context(), co.db(), co.engine, uri.ID.UUID, request.EnvelopeID.UUID)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
