package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthController reports process liveness and database reachability.
type HealthController struct {
	db DBPinger
}

// DBPinger is the minimal surface the health check needs from the database.
type DBPinger interface {
	Ping() error
}

func NewHealthController(db DBPinger) *HealthController {
	return &HealthController{db: db}
}

func (h *HealthController) Health(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthController) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
