package follow

import "github.com/gin-gonic/gin"

func SetupRouter(svc Service) *gin.Engine {
	r := gin.Default()
	h := NewHandler(svc)

	r.GET("/health", h.Health)

	users := r.Group("/users")
	{
		users.POST("/:user_id/follow", h.Follow)
		users.DELETE("/:user_id/follow", h.Unfollow)
		users.GET("/:user_id/follow-status", h.Status)
		users.GET("/:user_id/followers", h.Followers)
		users.GET("/:user_id/following", h.Following)
		users.GET("/:user_id/follow-counts", h.Counts)
	}

	requests := r.Group("/follow-requests")
	{
		requests.GET("/pending", h.Pending)
		requests.POST("/accept/:requester_id", h.Accept)
		requests.POST("/reject/:requester_id", h.Reject)
	}

	return r
}
