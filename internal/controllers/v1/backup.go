package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moneyfold/backend/internal/backup"
	"github.com/moneyfold/backend/internal/httperror"
	"github.com/moneyfold/backend/internal/httputil"
)

// RegisterBackupRoutes registers the routes for backups with the RouterGroup
// that is passed.
func (co Controller) RegisterBackupRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", co.OptionsBackup)
	r.GET("", co.GetBackup)
	r.POST("", co.RestoreBackup)
	r.GET("/csv", co.GetBackupCSV)
}

func (co Controller) OptionsBackup(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// GetBackup exports the full dataset as a versioned JSON document.
func (co Controller) GetBackup(c *gin.Context) {
	document, err := backup.Export(co.db())
	if err != nil {
		abort(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="moneyfold-backup.json"`)
	c.JSON(http.StatusOK, document)
}

// RestoreBackup validates the uploaded document and replaces the full
// dataset with its content. The replace is atomic, a rejected document
// leaves the current data untouched.
func (co Controller) RestoreBackup(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	err = backup.Import(co.db(), raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// GetBackupCSV exports all transactions in spreadsheet-friendly form.
func (co Controller) GetBackupCSV(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="moneyfold-transactions.csv"`)
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)

	err := backup.ExportCSV(co.db(), c.Writer)
	if err != nil {
		abort(c, err)
		return
	}
}
