package middleware

import "github.com/valyala/fasthttp"

// SecurityHeaders stamps every response, 404s included, with headers that
// keep the endpoint out of search indexes and inert when opened in a
// browser.
func SecurityHeaders(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		next(ctx)
		ctx.Response.Header.Set("X-Robots-Tag", "noindex,nofollow,noarchive")
		ctx.Response.Header.Set("Content-Security-Policy", "default-src 'none'")
	}
}
