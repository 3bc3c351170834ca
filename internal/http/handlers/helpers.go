package handlers

import (
	"net"

	"github.com/valyala/fasthttp"
)

// Fixed response bodies from the ingestion contract.
const (
	bodyNoReport    = "No report"
	bodyUnsupported = "Unsupported report"
	bodyNotFound    = "Not found"
	bodyRobots      = "User-agent: *\nDisallow: /"
)

func textResponse(ctx *fasthttp.RequestCtx, status int, body string) {
	ctx.SetStatusCode(status)
	ctx.SetBodyString(body)
}

// clientIP resolves the reporting client's address: the transport peer,
// unless a front-end proxy supplied X-Real-Ip. Whether that header is
// trustworthy is the deployment's concern, not validated here.
func clientIP(ctx *fasthttp.RequestCtx) string {
	if v := ctx.Request.Header.Peek("X-Real-Ip"); len(v) > 0 {
		return string(v)
	}
	addr := ctx.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
