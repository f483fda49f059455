package nginx

import "strings"

// cipherPreset is one named TLS configuration bundle. Session settings are
// part of the preset so generation stays deterministic.
type cipherPreset struct {
	Ciphers              string
	PreferServerCiphers  bool
	SessionCache         string
	SessionTimeout       string
	SessionTicketsOff    bool
}

// cipherPresets follows the Mozilla server-side TLS guidelines.
var cipherPresets = map[CipherPreset]cipherPreset{
	CipherModern: {
		Ciphers:           "TLS_AES_128_GCM_SHA256:TLS_AES_256_GCM_SHA384:TLS_CHACHA20_POLY1305_SHA256",
		SessionCache:      "shared:SSL:10m",
		SessionTimeout:    "1d",
		SessionTicketsOff: true,
	},
	CipherIntermediate: {
		Ciphers:           "ECDHE-ECDSA-AES128-GCM-SHA256:ECDHE-RSA-AES128-GCM-SHA256:ECDHE-ECDSA-AES256-GCM-SHA384:ECDHE-RSA-AES256-GCM-SHA384:ECDHE-ECDSA-CHACHA20-POLY1305:ECDHE-RSA-CHACHA20-POLY1305:DHE-RSA-AES128-GCM-SHA256:DHE-RSA-AES256-GCM-SHA384",
		SessionCache:      "shared:SSL:10m",
		SessionTimeout:    "1d",
		SessionTicketsOff: true,
	},
	CipherLegacy: {
		Ciphers:             "ECDHE-ECDSA-AES128-GCM-SHA256:ECDHE-RSA-AES128-GCM-SHA256:ECDHE-ECDSA-AES256-GCM-SHA384:ECDHE-RSA-AES256-GCM-SHA384:DHE-RSA-AES128-GCM-SHA256:DHE-RSA-AES256-GCM-SHA384:AES128-GCM-SHA256:AES256-GCM-SHA384:AES128-SHA256:AES256-SHA256",
		PreferServerCiphers: true,
		SessionCache:        "shared:SSL:10m",
		SessionTimeout:      "4h",
		SessionTicketsOff:   false,
	},
}

// matchCipherPreset infers which named preset an explicit ssl_ciphers value
// most resembles. Unrecognized values fall back to intermediate.
func matchCipherPreset(value string) CipherPreset {
	for _, name := range []CipherPreset{CipherModern, CipherIntermediate, CipherLegacy} {
		if value == cipherPresets[name].Ciphers {
			return name
		}
	}
	switch {
	case strings.HasPrefix(value, "TLS_"):
		return CipherModern
	case strings.Contains(value, "AES128-SHA") || strings.Contains(value, "DES"):
		return CipherLegacy
	}
	return CipherIntermediate
}

// hstsHeaderValue is the single Strict-Transport-Security value emitted and
// recognized on import.
const hstsHeaderValue = "max-age=63072000; includeSubDomains"

// securityHeaders is the fixed header set behind the security-headers flag,
// in emission order.
var securityHeaders = []HeaderPair{
	{Name: "X-Frame-Options", Value: "SAMEORIGIN"},
	{Name: "X-Content-Type-Options", Value: "nosniff"},
	{Name: "X-XSS-Protection", Value: "1; mode=block"},
	{Name: "Referrer-Policy", Value: "strict-origin-when-cross-origin"},
}

func isSecurityHeader(name string) bool {
	for _, h := range securityHeaders {
		if strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}

// realIPHeaders is the forwarded-client-identity block emitted inside proxy
// locations when real-IP forwarding is on.
var realIPHeaders = []HeaderPair{
	{Name: "Host", Value: "$host"},
	{Name: "X-Real-IP", Value: "$remote_addr"},
	{Name: "X-Forwarded-For", Value: "$proxy_add_x_forwarded_for"},
	{Name: "X-Forwarded-Proto", Value: "$scheme"},
}

func isRealIPHeader(name string) bool {
	for _, h := range realIPHeaders {
		if strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}

// assetClass is one static-caching catch-all pattern.
type assetClass struct {
	Name    string
	Pattern string
}

// assetClasses drive the catch-all cache locations, in emission order. The
// patterns double as recognition keys on import so generated catch-alls fold
// back into the static-caching flag instead of becoming explicit locations.
var assetClasses = []assetClass{
	{Name: "images", Pattern: `\.(png|jpg|jpeg|gif|ico|svg|webp)$`},
	{Name: "css", Pattern: `\.(css)$`},
	{Name: "js", Pattern: `\.(js|mjs)$`},
	{Name: "fonts", Pattern: `\.(woff|woff2|ttf|otf|eot)$`},
}

func isAssetClassPattern(pattern string) bool {
	for _, ac := range assetClasses {
		if ac.Pattern == pattern {
			return true
		}
	}
	return false
}

// rateLimitZoneName is the fixed shared-memory zone name used for the
// file-scope limit_req_zone declaration.
const rateLimitZoneName = "ratelimit"
