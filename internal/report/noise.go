package report

// IsNoise reports whether a CSP report is known browser-internal noise:
// violations blamed on extension-injected content or on about: pages are
// not actionable for the site operator and are acknowledged without being
// persisted.
func IsNoise(doc map[string]any) bool {
	csp, ok := doc["csp-report"].(map[string]any)
	if !ok {
		return false
	}
	return csp["blocked-uri"] == "chrome-extension" || csp["source-file"] == "about"
}
