package handlers

import "github.com/valyala/fasthttp"

// Robots serves the fixed crawler policy. The endpoint is write-only and
// must never be indexed.
func Robots() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetContentType("text/plain; charset=utf-8")
		ctx.SetBodyString(bodyRobots)
	}
}

// NotFound answers every unroutable path and disallowed method with the
// same 404.
func NotFound() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		textResponse(ctx, fasthttp.StatusNotFound, bodyNotFound)
	}
}
