package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/moneyfold/backend/internal/httperror"
	"github.com/moneyfold/backend/internal/httputil"
	"github.com/moneyfold/backend/internal/ledger"
	"github.com/moneyfold/backend/internal/models"
	mf_uuid "github.com/moneyfold/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

// RegisterDistributionRoutes registers the routes for distributions with the
// RouterGroup that is passed.
func (co Controller) RegisterDistributionRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", co.OptionsDistributions)
	r.POST("", co.CreateDistribution)
}

func (co Controller) OptionsDistributions(c *gin.Context) {
	httputil.OptionsPost(c)
}

type DistributionShare struct {
	EnvelopeID mf_uuid.UUID    `json:"envelopeId" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
}

type DistributionRequest struct {
	Deposit decimal.Decimal `json:"deposit"`
	Note    string          `json:"note"`
	Date    time.Time       `json:"date"`

	// Either explicit shares or a template reference
	Shares     []DistributionShare `json:"shares"`
	TemplateID mf_uuid.UUID        `json:"templateId"`
}

// CreateDistribution splits a deposit over multiple envelopes, either from
// explicit shares or from a saved template. The shares must sum to the
// deposit within the accepted rounding tolerance.
func (co Controller) CreateDistribution(c *gin.Context) {
	var request DistributionRequest
	err := c.ShouldBindJSON(&request)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	var result ledger.DistributionResult
	if request.TemplateID != mf_uuid.Nil {
		var template models.DistributionTemplate
		err = co.db().Preload("Shares").First(&template, "id = ?", request.TemplateID.UUID).Error
		if err != nil {
			abort(c, err)
			return
		}

		result, err = ledger.ApplyTemplate(
			c.Request.Context(), co.db(), co.engine, co.engine.UserID(),
			template, request.Deposit, request.Note, request.Date,
		)
	} else {
		shares := make(map[uuid.UUID]decimal.Decimal, len(request.Shares))
		for _, share := range request.Shares {
			shares[share.EnvelopeID.UUID] = share.Amount
		}

		result, err = ledger.Distribute(
			c.Request.Context(), co.db(), co.engine, co.engine.UserID(),
			request.Deposit, shares, request.Note, request.Date,
		)
	}

	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
