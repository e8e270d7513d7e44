package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lumina/lts/internal/handler"
)

// Setup builds the REST surface: review endpoints, marketplace endpoints,
// chain event views, health and metrics.
func Setup(
	reviews *handler.ReviewHandler,
	auctions *handler.AuctionHandler,
	events *handler.EventHandler,
	tickets *handler.TicketHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	ev := v1.Group("/events")
	{
		ev.GET("", events.GetEvents)
		ev.GET("/:eventId", events.GetEvent)
		ev.GET("/:eventId/calendar", events.ExportICS)
	}

	rv := v1.Group("/reviews")
	{
		rv.GET("/:eventId", reviews.GetReviews)
		rv.GET("/:eventId/stats", reviews.GetStats)
		rv.POST("", reviews.CreateReview)
		rv.PUT("/:id", reviews.UpdateReview)
	}

	tk := v1.Group("/tickets")
	{
		tk.POST("/buy", tickets.Buy)
		tk.POST("/:ticketId/transfer", tickets.Transfer)
		tk.POST("/:ticketId/use", tickets.Use)
		tk.POST("/check-in", tickets.CheckIn)
		tk.GET("/:ticketId/qr", tickets.QRPayload)
	}

	mp := v1.Group("/marketplace")
	{
		mp.GET("/auctions", auctions.ListAuctions)
		mp.POST("/auctions/prepare", auctions.PrepareAuction)
		mp.GET("/auctions/:id", auctions.GetAuction)
		mp.POST("/auctions/:id/bid", auctions.PlaceBid)
		mp.GET("/auctions/:id/bids", auctions.GetBids)
		mp.POST("/register", auctions.RegisterAuction)
		mp.GET("/user-tickets/:address", auctions.GetUserTickets)
		mp.GET("/check-ticket/:ticketId", auctions.CheckTicket)
	}

	return r
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
