package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moneyfold/backend/internal/backup"
	"github.com/moneyfold/backend/internal/httperror"
	"github.com/moneyfold/backend/internal/httputil"
)

var errCleanupConfirmation = errors.New("the confirmation for the cleanup is not correct")

// RegisterCleanupRoutes registers the routes for the cleanup with the
// RouterGroup that is passed.
func (co Controller) RegisterCleanupRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", co.OptionsCleanup)
	r.DELETE("", co.Cleanup)
}

func (co Controller) OptionsCleanup(c *gin.Context) {
	httputil.OptionsDelete(c)
}

type CleanupResponse struct {
	Removed int64 `json:"removed"`
}

// Cleanup removes template shares and allocations whose envelope no longer
// exists, and templates that end up without any shares.
func (co Controller) Cleanup(c *gin.Context) {
	var params struct {
		Confirm string `form:"confirm"`
	}

	err := c.Bind(&params)
	if err != nil || params.Confirm != "yes-please-delete-orphans" {
		c.JSON(http.StatusBadRequest, httperror.New(errCleanupConfirmation))
		return
	}

	removed, err := backup.CleanupOrphanedReferences(co.db())
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, CleanupResponse{Removed: removed})
}
