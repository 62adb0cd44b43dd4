// Package v1 implements the v1 API.
package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moneyfold/backend/internal/auth"
	"github.com/moneyfold/backend/internal/httperror"
	"github.com/moneyfold/backend/internal/httputil"
	"github.com/moneyfold/backend/internal/ledger"
	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/internal/rollover"
	"github.com/moneyfold/backend/internal/sync"
	"gorm.io/gorm"
)

// Controller exposes the ledger operations over HTTP. All writes go through
// the sync engine's optimistic-update path, reads go to the local cache
// directly.
type Controller struct {
	engine *sync.Engine
}

func New(engine *sync.Engine) Controller {
	return Controller{engine: engine}
}

func (co Controller) db() *gorm.DB {
	return co.engine.DB()
}

// RegisterRoutes registers all v1 routes with the RouterGroup that is
// passed.
func (co Controller) RegisterRoutes(group *gin.RouterGroup) {
	{
		group.GET("", co.GetV1)
		group.OPTIONS("", OptionsV1)
	}

	co.RegisterEnvelopeRoutes(group.Group("/envelopes"))
	co.RegisterTransactionRoutes(group.Group("/transactions"))
	co.RegisterIncomeSourceRoutes(group.Group("/income-sources"))
	co.RegisterAllocationRoutes(group.Group("/allocations"))
	co.RegisterTransferRoutes(group.Group("/transfers"))
	co.RegisterDistributionRoutes(group.Group("/distributions"))
	co.RegisterTemplateRoutes(group.Group("/templates"))
	co.RegisterMonthRoutes(group.Group("/months"))
	co.RegisterBackupRoutes(group.Group("/backup"))
	co.RegisterSyncRoutes(group.Group("/sync"))
	co.RegisterCleanupRoutes(group.Group("/cleanup"))
}

// status maps an error to the HTTP status of the response reporting it.
func status(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, models.ErrResourceNotFound),
		errors.Is(err, ledger.ErrEnvelopeNotFound),
		errors.Is(err, ledger.ErrTransferNotFound):
		return http.StatusNotFound

	case errors.Is(err, models.ErrTransactionReconciled),
		errors.Is(err, ledger.ErrTransferComplete),
		errors.Is(err, rollover.ErrTargetMonthNotEmpty):
		return http.StatusConflict

	case errors.Is(err, auth.ErrSessionLocked):
		return http.StatusForbidden

	case errors.Is(err, models.ErrAmountNegative),
		errors.Is(err, models.ErrTransactionTypeInvalid),
		errors.Is(err, models.ErrEnvelopeNameNotUnique),
		errors.Is(err, models.ErrAllocationMonthNotUnique),
		errors.Is(err, models.ErrTemplateShareEnvelopeNotUnique),
		errors.Is(err, ledger.ErrTransferSameEnvelope),
		errors.Is(err, ledger.ErrTransferAmountNotPositive),
		errors.Is(err, ledger.ErrDistributionUnbalanced),
		errors.Is(err, ledger.ErrDepositAmountNotPositive),
		errors.Is(err, ledger.ErrTemplateUnbalanced),
		errors.Is(err, ledger.ErrMonthRequired),
		errors.Is(err, rollover.ErrTargetMonthZero):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func abort(c *gin.Context, err error) {
	c.JSON(status(err), httperror.New(err))
}

type V1Response struct {
	Links V1Links `json:"links"`
}

type V1Links struct {
	Envelopes     string `json:"envelopes" example:"https://example.com/v1/envelopes"`
	Transactions  string `json:"transactions" example:"https://example.com/v1/transactions"`
	IncomeSources string `json:"incomeSources" example:"https://example.com/v1/income-sources"`
	Allocations   string `json:"allocations" example:"https://example.com/v1/allocations"`
	Transfers     string `json:"transfers" example:"https://example.com/v1/transfers"`
	Distributions string `json:"distributions" example:"https://example.com/v1/distributions"`
	Templates     string `json:"templates" example:"https://example.com/v1/templates"`
	Months        string `json:"months" example:"https://example.com/v1/months"`
	Backup        string `json:"backup" example:"https://example.com/v1/backup"`
	Sync          string `json:"sync" example:"https://example.com/v1/sync"`
}

// GetV1 returns the link list for the v1 API.
func (co Controller) GetV1(c *gin.Context) {
	url := requestHost(c) + "/v1"

	c.JSON(http.StatusOK, V1Response{
		Links: V1Links{
			Envelopes:     url + "/envelopes",
			Transactions:  url + "/transactions",
			IncomeSources: url + "/income-sources",
			Allocations:   url + "/allocations",
			Transfers:     url + "/transfers",
			Distributions: url + "/distributions",
			Templates:     url + "/templates",
			Months:        url + "/months",
			Backup:        url + "/backup",
			Sync:          url + "/sync",
		},
	})
}

func OptionsV1(c *gin.Context) {
	httputil.OptionsGet(c)
}

func requestHost(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.Request.Header.Get("x-forwarded-proto") == "https" {
		scheme = "https"
	}

	return scheme + "://" + c.Request.Host
}
