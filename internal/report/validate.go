package report

// Kind identifies which taxonomy rule accepted a report.
type Kind string

const (
	KindProbe         Kind = "probe"
	KindReportingAPI  Kind = "reporting-api"
	KindNetworkError  Kind = "network-error"
	KindFeaturePolicy Kind = "feature-policy"
	KindCSP           Kind = "csp"
	KindHPKP          Kind = "hpkp"
	KindExpectCT      Kind = "expect-ct"
)

// Reason classifies a rejection.
type Reason string

const (
	ReasonNoReport    Reason = "no-report"
	ReasonUnsupported Reason = "unsupported"
)

// Decision is the validator's verdict on a parsed document.
type Decision struct {
	Accepted bool
	Kind     Kind
	Reason   Reason
}

func accepted(k Kind) Decision   { return Decision{Accepted: true, Kind: k} }
func rejected(r Reason) Decision { return Decision{Reason: r} }

// Validate decides whether a parsed document is a recognized browser
// report. This is an allow-list over discriminator keys, not a schema
// check: fields inside an accepted report are stored as-is for the
// operator to inspect.
func Validate(v any) Decision {
	if isEmpty(v) {
		return rejected(ReasonNoReport)
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return rejected(ReasonUnsupported)
	}

	switch doc["type"] {
	case "magick", "xxe", "xss":
		return accepted(KindProbe)
	// https://w3c.github.io/reporting/
	case "deprecation", "intervention", "crash":
		return accepted(KindReportingAPI)
	// https://www.w3.org/TR/network-error-logging-1/
	case "network-error":
		return accepted(KindNetworkError)
	// https://wicg.github.io/feature-policy/
	case "feature-policy-violation":
		return accepted(KindFeaturePolicy)
	}

	// https://w3c.github.io/webappsec-csp/
	if !isEmpty(doc["csp-report"]) {
		return accepted(KindCSP)
	}
	// https://tools.ietf.org/html/rfc7469#section-3
	if !isEmpty(doc["validated-certificate-chain"]) {
		return accepted(KindHPKP)
	}
	// https://tools.ietf.org/html/draft-ietf-httpbis-expect-ct-07#section-3
	if !isEmpty(doc["expect-ct-report"]) {
		return accepted(KindExpectCT)
	}

	return rejected(ReasonUnsupported)
}

// isEmpty reports whether a decoded JSON value carries no content: null,
// false, zero, the empty string, and empty arrays or objects all count.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case float64:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
