package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/veylabs/rolegate/mongodb"
)

// HealthAPI serves the liveness endpoints used by external uptime checks.
type HealthAPI struct{}

// NewHealthAPI initializes the health API.
func NewHealthAPI() *HealthAPI {
	return &HealthAPI{}
}

// RegisterRoutes registers the health routes.
func (a *HealthAPI) RegisterRoutes(e *echo.Echo) {
	e.GET("/", a.RunningHandler)
	e.GET("/healthz", a.HealthzHandler)
}

// RunningHandler returns a static acknowledgement. Uptime monitors only
// check that the process answers.
func (a *HealthAPI) RunningHandler(c echo.Context) error {
	return c.String(http.StatusOK, "Bot is running!")
}

// HealthzHandler additionally verifies the database connection.
func (a *HealthAPI) HealthzHandler(c echo.Context) error {
	if err := mongodb.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
