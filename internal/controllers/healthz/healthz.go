// Package healthz implements the health check endpoint.
package healthz

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moneyfold/backend/internal/httperror"
	"github.com/moneyfold/backend/internal/httputil"
	"gorm.io/gorm"
)

type Controller struct {
	db *gorm.DB
}

func New(db *gorm.DB) Controller {
	return Controller{db: db}
}

// Get returns 204 when the database connection is alive.
func (co Controller) Get(c *gin.Context) {
	sqlDB, err := co.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, httperror.New(err))
		return
	}

	err = sqlDB.Ping()
	if err != nil {
		c.JSON(http.StatusInternalServerError, httperror.New(err))
		return
	}

	c.Status(http.StatusNoContent)
}

func (co Controller) Options(c *gin.Context) {
	httputil.OptionsGet(c)
}
