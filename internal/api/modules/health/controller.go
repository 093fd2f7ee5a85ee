package health

import (
	"errors"
	"net/http"

	"github.com/ethanbaker/smartmarket/internal/api/respond"
	"github.com/ethanbaker/smartmarket/pkg/sdk"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type controller struct {
	db *gorm.DB
}

// Return status of the API and its database
func (ctrl *controller) getStatus(c *gin.Context) {
	if err := ctrl.ping(c); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusServiceUnavailable, "Database unavailable", err.Error()).AsGinResponse())
		return
	}

	respond.OK(c, "OK", sdk.HealthResponse{Status: "ok", Database: "ok"})
}

func (ctrl *controller) ping(c *gin.Context) error {
	if ctrl.db == nil {
		return errors.New("no database configured")
	}

	sqlDB, err := ctrl.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(c.Request.Context())
}
