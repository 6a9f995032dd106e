package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tsangpocruise/booking-backend/internal/middleware"
	"github.com/tsangpocruise/booking-backend/internal/services"
	"github.com/tsangpocruise/booking-backend/internal/utils"
)

// actorFrom captures who made the request for the audit trail.
// Anonymous callers get a zero user id.
func actorFrom(c *gin.Context) services.Actor {
	actor := services.Actor{
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	}
	if user, ok := middleware.GetUser(c); ok {
		actor.UserID = user.ID
	}
	return actor
}
