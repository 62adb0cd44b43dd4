package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moneyfold/backend/internal/httperror"
	"github.com/moneyfold/backend/internal/httputil"
	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/internal/types"
	"github.com/shopspring/decimal"
)

// RegisterIncomeSourceRoutes registers the routes for income sources with
// the RouterGroup that is passed.
func (co Controller) RegisterIncomeSourceRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", co.OptionsIncomeSources)
		r.GET("", co.GetIncomeSources)
		r.POST("", co.CreateIncomeSource)
	}

	{
		r.OPTIONS("/:id", co.OptionsIncomeSourceDetail)
		r.PATCH("/:id", co.UpdateIncomeSource)
		r.DELETE("/:id", co.DeleteIncomeSource)
	}
}

func (co Controller) OptionsIncomeSources(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func (co Controller) OptionsIncomeSourceDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	err = co.db().First(&models.IncomeSource{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// GetIncomeSources returns income sources, optionally filtered by month.
func (co Controller) GetIncomeSources(c *gin.Context) {
	var query QueryMonth
	err := c.Bind(&query)
	if err != nil {
		abort(c, err)
		return
	}

	q := co.db().Order("name ASC")
	if !query.Month.IsZero() {
		q = q.Where("month = ?", types.MonthOf(query.Month))
	}

	var sources []models.IncomeSource
	err = q.Find(&sources).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, sources)
}

type IncomeSourceEditable struct {
	Month  types.Month     `json:"month" binding:"required" example:"2026-03"`
	Name   string          `json:"name" binding:"required" example:"Salary"`
	Amount decimal.Decimal `json:"amount"`
}

// CreateIncomeSource creates an income source for a month.
func (co Controller) CreateIncomeSource(c *gin.Context) {
	var editable IncomeSourceEditable
	err := c.ShouldBindJSON(&editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	source := models.IncomeSource{
		Month:  editable.Month,
		Name:   editable.Name,
		Amount: editable.Amount,
	}

	err = co.engine.CreateIncomeSource(c.Request.Context(), &source)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, source)
}

// UpdateIncomeSource updates an income source.
func (co Controller) UpdateIncomeSource(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	var source models.IncomeSource
	err = co.db().First(&source, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	var editable IncomeSourceEditable
	err = c.ShouldBindJSON(&editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	source.Month = editable.Month
	source.Name = editable.Name
	source.Amount = editable.Amount

	outcome, err := co.engine.UpdateEntity(c.Request.Context(), &source)
	if err != nil {
		abort(c, err)
		return
	}

	c.Header("Sync-Outcome", string(outcome))
	c.JSON(http.StatusOK, source)
}

// DeleteIncomeSource deletes an income source.
func (co Controller) DeleteIncomeSource(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	var source models.IncomeSource
	err = co.db().First(&source, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	outcome, err := co.engine.DeleteEntity(c.Request.Context(), &source)
	if err != nil {
		abort(c, err)
		return
	}

	c.Header("Sync-Outcome", string(outcome))
	c.JSON(http.StatusNoContent, nil)
}
