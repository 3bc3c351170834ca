package report

import (
	"errors"
	"mime"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/text/encoding/ianaindex"
)

// ErrNoReport means the request carried nothing usable: an empty body or
// one that does not parse as JSON. Always a client error, never a fault.
var ErrNoReport = errors.New("no report")

// probeTags are reserved endpoint names used to capture raw traffic from
// exploit attempts against the endpoint itself (ImageMagick payloads, XML
// external entities, cross-site scripting). Their payloads are recorded
// verbatim instead of being parsed.
var probeTags = map[string]bool{
	"magick": true,
	"xxe":    true,
	"xss":    true,
}

// Request is the inbound descriptor the classifier works from. Header keys
// are expected lowercase.
type Request struct {
	Tag         string
	Method      string
	ContentType string
	Headers     map[string]string
	Body        []byte
	Query       map[string][]string
}

// Classify turns a request into a report document candidate.
//
// Probe tags yield a synthetic document wrapping the raw request: all
// headers, the tag as the report type, and the body decoded per the
// declared charset (query parameters stand in for the body on GET probes).
// Every other tag must carry a JSON body; an empty or unparseable body
// yields ErrNoReport.
func Classify(req Request) (any, error) {
	if probeTags[req.Tag] {
		doc := map[string]any{
			"headers": req.Headers,
			"type":    req.Tag,
		}
		if req.Method == "POST" {
			doc["body"] = decodeBody(req.Body, req.ContentType)
		} else {
			doc["body"] = req.Query
		}
		return doc, nil
	}

	if len(req.Body) == 0 {
		return nil, ErrNoReport
	}
	var doc any
	if err := json.Unmarshal(req.Body, &doc); err != nil {
		return nil, ErrNoReport
	}
	return doc, nil
}

// decodeBody decodes raw bytes using the charset declared in the
// Content-Type header, falling back to UTF-8 when the parameter is absent
// or names an unknown encoding. Invalid sequences are replaced, never
// rejected: probe payloads are hostile by definition and must still be
// recorded.
func decodeBody(body []byte, contentType string) string {
	name := "utf-8"
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if cs := params["charset"]; cs != "" {
			name = cs
		}
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return strings.ToValidUTF8(string(body), "�")
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return strings.ToValidUTF8(string(body), "�")
	}
	return strings.ToValidUTF8(string(decoded), "�")
}
