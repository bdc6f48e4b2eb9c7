package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck is the liveness probe.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Status is the root endpoint the client pings on startup.
func Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Voice Email Assistant API is running"})
}
