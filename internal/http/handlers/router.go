package handlers

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
)

// NewRouter wires the HTTP surface: the crawler policy, liveness and
// metrics endpoints, and the tag catch-all feeding the report pipeline.
func NewRouter(store ReportStore) *router.Router {
	r := router.New()

	// Disallowed methods fall through to NotFound: the contract answers
	// 404, never 405, for anything outside the routed method set.
	r.HandleMethodNotAllowed = false
	r.NotFound = NotFound()

	r.GET("/robots.txt", Robots())
	r.HEAD("/robots.txt", Robots())

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})

	r.GET("/metrics", MetricsHandler())

	// The empty tag is valid, so the bare root collects reports too.
	reports := ReportHandler(store)
	r.GET("/", reports)
	r.POST("/", reports)
	r.GET("/{tag}", reports)
	r.POST("/{tag}", reports)

	return r
}
