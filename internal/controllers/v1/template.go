package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moneyfold/backend/internal/httperror"
	"github.com/moneyfold/backend/internal/httputil"
	"github.com/moneyfold/backend/internal/ledger"
	"github.com/moneyfold/backend/internal/models"
	mf_uuid "github.com/moneyfold/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

// RegisterTemplateRoutes registers the routes for distribution templates
// with the RouterGroup that is passed.
func (co Controller) RegisterTemplateRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", co.OptionsTemplates)
		r.GET("", co.GetTemplates)
		r.POST("", co.CreateTemplate)
	}

	{
		r.OPTIONS("/:id", co.OptionsTemplateDetail)
		r.GET("/:id", co.GetTemplate)
		r.PATCH("/:id", co.UpdateTemplate)
		r.DELETE("/:id", co.DeleteTemplate)
	}
}

func (co Controller) OptionsTemplates(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func (co Controller) OptionsTemplateDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	err = co.db().First(&models.DistributionTemplate{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// GetTemplates returns all distribution templates with their shares.
func (co Controller) GetTemplates(c *gin.Context) {
	var templates []models.DistributionTemplate
	err := co.db().Preload("Shares").Order("name ASC").Find(&templates).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, templates)
}

func (co Controller) GetTemplate(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	var template models.DistributionTemplate
	err = co.db().Preload("Shares").First(&template, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, template)
}

type TemplateShareEditable struct {
	EnvelopeID mf_uuid.UUID    `json:"envelopeId" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
}

type TemplateEditable struct {
	Name string `json:"name" binding:"required" example:"Payday split"`
	Note string `json:"note"`

	// Total is the deposit the template is built for. The shares must sum
	// to it for the template to be saved.
	Total  decimal.Decimal         `json:"total" binding:"required" example:"2000"`
	Shares []TemplateShareEditable `json:"shares" binding:"required"`
}

func (editable TemplateEditable) model(userID mf_uuid.UUID) models.DistributionTemplate {
	template := models.DistributionTemplate{
		UserID: userID.UUID,
		Name:   editable.Name,
		Note:   editable.Note,
	}

	for _, share := range editable.Shares {
		template.Shares = append(template.Shares, models.TemplateShare{
			EnvelopeID: share.EnvelopeID.UUID,
			Amount:     share.Amount,
		})
	}

	return template
}

// CreateTemplate saves a distribution template with its shares.
func (co Controller) CreateTemplate(c *gin.Context) {
	var editable TemplateEditable
	err := c.ShouldBindJSON(&editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	template := editable.model(mf_uuid.UUID{UUID: co.engine.UserID()})

	err = ledger.ValidateTemplate(template, editable.Total)
	if err != nil {
		abort(c, err)
		return
	}

	outcome, err := co.engine.CreateEntity(c.Request.Context(), &template)
	if err != nil {
		abort(c, err)
		return
	}

	c.Header("Sync-Outcome", string(outcome))
	c.JSON(http.StatusCreated, template)
}

// UpdateTemplate replaces a template's name, note and shares.
func (co Controller) UpdateTemplate(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	var template models.DistributionTemplate
	err = co.db().Preload("Shares").First(&template, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	var editable TemplateEditable
	err = c.ShouldBindJSON(&editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	// Check the new shares against the declared total before the old ones
	// are dropped so an unbalanced update leaves the template untouched.
	err = ledger.ValidateTemplate(editable.model(mf_uuid.UUID{UUID: template.UserID}), editable.Total)
	if err != nil {
		abort(c, err)
		return
	}

	// Replace the shares wholesale, diffing them is not worth it. The
	// delete is unscoped, soft-deleted rows would still occupy the unique
	// index on template and envelope.
	err = co.db().Unscoped().Where("template_id = ?", template.ID).Delete(&models.TemplateShare{}).Error
	if err != nil {
		abort(c, err)
		return
	}

	template.Name = editable.Name
	template.Note = editable.Note
	template.Shares = nil
	for _, share := range editable.Shares {
		template.Shares = append(template.Shares, models.TemplateShare{
			TemplateID: template.ID,
			EnvelopeID: share.EnvelopeID.UUID,
			Amount:     share.Amount,
		})
	}

	outcome, err := co.engine.UpdateEntity(c.Request.Context(), &template)
	if err != nil {
		abort(c, err)
		return
	}

	c.Header("Sync-Outcome", string(outcome))
	c.JSON(http.StatusOK, template)
}

// DeleteTemplate deletes a template and its shares.
func (co Controller) DeleteTemplate(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		abort(c, err)
		return
	}

	var template models.DistributionTemplate
	err = co.db().First(&template, "id = ?", uri.ID.UUID).Error
	if err != nil {
		abort(c, err)
		return
	}

	outcome, err := co.engine.DeleteEntity(c.Request.Context(), &template)
	if err != nil {
		abort(c, err)
		return
	}

	c.Header("Sync-Outcome", string(outcome))
	c.JSON(http.StatusNoContent, nil)
}
