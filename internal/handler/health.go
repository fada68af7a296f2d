package handler

import (
	"net/http"

	"opsdash/internal/dto"
	"opsdash/internal/model"
	"opsdash/internal/service"

	"github.com/gin-gonic/gin"
)

// Health reports the loaded dataset, what cleaning changed and the cache
// state. The dataset is immutable, so the only thing that can degrade is
// the optional cache; an open breaker is reported but still answers 200.
func Health(ds *model.Dataset, cleaning dto.CleaningReport, dashboard service.DashboardService) gin.HandlerFunc {
	rows := ds.RowCounts()
	return func(c *gin.Context) {
		resp := dto.HealthResponse{
			OK:          true,
			Fingerprint: ds.Fingerprint(),
			Rows:        rows,
			Cleaning:    cleaning,
			Cache:       "disabled",
		}
		if st := dashboard.CacheStatus(); st != "disabled" {
			resp.Cache = "redis"
			resp.Breaker = st
		}
		c.JSON(http.StatusOK, resp)
	}
}
