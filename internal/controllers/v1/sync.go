package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moneyfold/backend/internal/httputil"
)

// RegisterSyncRoutes registers the routes for the sync engine with the
// RouterGroup that is passed.
func (co Controller) RegisterSyncRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", co.OptionsSync)
	r.GET("", co.GetSyncStatus)
	r.POST("", co.TriggerSync)
}

func (co Controller) OptionsSync(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// GetSyncStatus reports connectivity, pending-queue length and the
// authentication grace state.
func (co Controller) GetSyncStatus(c *gin.Context) {
	status, err := co.engine.Status()
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// TriggerSync flushes the pending queue and refreshes the cache from the
// remote store, outside the regular interval.
func (co Controller) TriggerSync(c *gin.Context) {
	ctx := c.Request.Context()

	err := co.engine.SyncData(ctx)
	if err != nil {
		abort(c, err)
		return
	}

	err = co.engine.FetchData(ctx)
	if err != nil {
		abort(c, err)
		return
	}

	status, err := co.engine.Status()
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
