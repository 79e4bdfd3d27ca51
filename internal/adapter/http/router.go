package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nethra1406/whatsappbot/internal/adapter/http/middleware"
	"github.com/nethra1406/whatsappbot/internal/logging"
)

func NewRouter(wh *WebhookHandler, oh *OrderHandler, th *TokenHandler, authz *middleware.Authz, appSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics())
	r.Use(middleware.Logging(logging.New("http")))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/webhook", wh.Verify)
	r.POST("/webhook", middleware.VerifySignature(appSecret), wh.Receive)

	r.POST("/v1/token", th.IssueToken)
	v1 := r.Group("/v1")
	{
		v1.GET("/orders", authz.Require("orders.read"), oh.ListOrders)
		v1.GET("/orders/:id", authz.Require("orders.read"), oh.GetOrderByID)
	}

	return r
}
