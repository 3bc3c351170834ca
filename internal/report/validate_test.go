package report

import "testing"

func TestValidateAccepted(t *testing.T) {
	tests := []struct {
		name string
		doc  any
		want Kind
	}{
		{"probe magick", map[string]any{"type": "magick"}, KindProbe},
		{"probe xxe", map[string]any{"type": "xxe"}, KindProbe},
		{"probe xss", map[string]any{"type": "xss"}, KindProbe},
		{"deprecation", map[string]any{"type": "deprecation"}, KindReportingAPI},
		{"intervention", map[string]any{"type": "intervention"}, KindReportingAPI},
		{"crash", map[string]any{"type": "crash"}, KindReportingAPI},
		{"network error logging", map[string]any{"type": "network-error", "url": "https://example.com/"}, KindNetworkError},
		{"feature policy", map[string]any{"type": "feature-policy-violation"}, KindFeaturePolicy},
		{"legacy csp", map[string]any{"csp-report": map[string]any{"blocked-uri": "https://evil.example"}}, KindCSP},
		{"hpkp", map[string]any{"validated-certificate-chain": []any{"pem"}}, KindHPKP},
		{"expect-ct", map[string]any{"expect-ct-report": map[string]any{"hostname": "example.com"}}, KindExpectCT},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Validate(tt.doc)
			if !d.Accepted {
				t.Fatalf("Validate rejected (%s), want accepted", d.Reason)
			}
			if d.Kind != tt.want {
				t.Errorf("kind = %s, want %s", d.Kind, tt.want)
			}
		})
	}
}

func TestValidateRejected(t *testing.T) {
	tests := []struct {
		name string
		doc  any
		want Reason
	}{
		{"nil", nil, ReasonNoReport},
		{"empty object", map[string]any{}, ReasonNoReport},
		{"empty string", "", ReasonNoReport},
		{"zero", float64(0), ReasonNoReport},
		{"false", false, ReasonNoReport},
		{"empty array", []any{}, ReasonNoReport},
		{"scalar", float64(5), ReasonUnsupported},
		{"array top level", []any{map[string]any{"type": "crash"}}, ReasonUnsupported},
		{"string top level", "network-error", ReasonUnsupported},
		{"unknown type", map[string]any{"type": "bogus"}, ReasonUnsupported},
		{"no discriminator", map[string]any{"url": "https://example.com/"}, ReasonUnsupported},
		{"falsy csp-report", map[string]any{"csp-report": ""}, ReasonUnsupported},
		{"empty csp-report object", map[string]any{"csp-report": map[string]any{}}, ReasonUnsupported},
		{"non-string type", map[string]any{"type": float64(7)}, ReasonUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Validate(tt.doc)
			if d.Accepted {
				t.Fatalf("Validate accepted as %s, want rejected", d.Kind)
			}
			if d.Reason != tt.want {
				t.Errorf("reason = %s, want %s", d.Reason, tt.want)
			}
		})
	}
}
