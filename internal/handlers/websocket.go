package handlers

import (
	"github.com/chachabrian/homefix-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler streams booking events to the authenticated caller
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		hub.HandleWebSocket(c.Writer, c.Request, actor.ID, actor.Role)
	}
}
