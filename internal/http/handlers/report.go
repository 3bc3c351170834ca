package handlers

import (
	"log"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"

	"github.com/kravietz/reporter/internal/report"
)

var (
	reportsTotal  *prometheus.CounterVec
	rejectedTotal *prometheus.CounterVec
	filteredTotal *prometheus.CounterVec
)

func InitPrometheusMetrics() {
	reportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reporter",
			Name:      "reports_total",
			Help:      "Total number of persisted reports.",
		},
		[]string{"tag", "kind"},
	)
	rejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reporter",
			Name:      "rejected_total",
			Help:      "Total number of rejected report submissions.",
		},
		[]string{"reason"},
	)
	filteredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reporter",
			Name:      "filtered_total",
			Help:      "Total number of CSP reports dropped as browser noise.",
		},
		[]string{"tag"},
	)
	prometheus.MustRegister(reportsTotal, rejectedTotal, filteredTotal)
}

// ReportStore is the persistence gateway the handler writes through.
type ReportStore interface {
	Save(document map[string]any, tag, clientIP, userAgent string) error
}

// tagPattern mirrors the route constraint: short lowercase identifiers
// only. Anything outside it is a routing miss, not a bad report.
var tagPattern = regexp.MustCompile(`^[a-z0-9-]{0,20}$`)

// ReportHandler runs the ingestion pipeline: classify the payload, check
// it against the report taxonomy, drop known noise, derive the client
// metadata and persist. Each stage short-circuits to its terminal status.
func ReportHandler(store ReportStore) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tag := tagParam(ctx)
		if !tagPattern.MatchString(tag) {
			textResponse(ctx, fasthttp.StatusNotFound, bodyNotFound)
			return
		}

		doc, err := report.Classify(classifierRequest(ctx, tag))
		if err != nil {
			rejectedTotal.WithLabelValues(string(report.ReasonNoReport)).Inc()
			textResponse(ctx, fasthttp.StatusBadRequest, bodyNoReport)
			return
		}

		decision := report.Validate(doc)
		if !decision.Accepted {
			rejectedTotal.WithLabelValues(string(decision.Reason)).Inc()
			if decision.Reason == report.ReasonNoReport {
				textResponse(ctx, fasthttp.StatusBadRequest, bodyNoReport)
			} else {
				textResponse(ctx, fasthttp.StatusBadRequest, bodyUnsupported)
			}
			return
		}

		// an accepted decision implies an object top level
		document := doc.(map[string]any)

		if report.IsNoise(document) {
			filteredTotal.WithLabelValues(tag).Inc()
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}

		ip := clientIP(ctx)
		userAgent := string(ctx.Request.Header.UserAgent())

		if err := store.Save(document, tag, ip, userAgent); err != nil {
			// the report is lost here: there is no retry queue, so the
			// log line is the only trace of it
			log.Printf("persist failed tag=%q ip=%s: %v", tag, ip, err)
			textResponse(ctx, fasthttp.StatusInternalServerError, "Internal error")
			return
		}

		reportsTotal.WithLabelValues(tag, string(decision.Kind)).Inc()
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	}
}

func tagParam(ctx *fasthttp.RequestCtx) string {
	if v, ok := ctx.UserValue("tag").(string); ok {
		return v
	}
	return ""
}

// classifierRequest flattens the fasthttp request into the classifier's
// transport-neutral descriptor. Compressed bodies are inflated first so
// probe captures record what the sender actually wrote.
func classifierRequest(ctx *fasthttp.RequestCtx, tag string) report.Request {
	headers := make(map[string]string)
	ctx.Request.Header.VisitAll(func(k, v []byte) {
		headers[strings.ToLower(string(k))] = string(v)
	})

	query := make(map[string][]string)
	ctx.QueryArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		query[key] = append(query[key], string(v))
	})

	body := ctx.Request.Body()
	if raw, err := ctx.Request.BodyUncompressed(); err == nil {
		body = raw
	}

	return report.Request{
		Tag:         tag,
		Method:      string(ctx.Method()),
		ContentType: string(ctx.Request.Header.ContentType()),
		Headers:     headers,
		Body:        body,
		Query:       query,
	}
}
