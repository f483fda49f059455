package nginx

import "fmt"

// Validate runs the minimal always-on structural checks over a model and
// returns advisory warnings. It never blocks generation; the exhaustive
// scored audit lives in the lint engine.
func Validate(m *ServerConfig) []string {
	var warnings []string
	warn := func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if m.ListenPort < 1 || m.ListenPort > 65535 {
		warn("listen port %d is outside the valid range 1-65535", m.ListenPort)
	}

	if m.SSL.Enabled {
		if m.SSL.CertificatePath == "" {
			warn("SSL is enabled but no certificate path is set")
		}
		if m.SSL.CertificateKeyPath == "" {
			warn("SSL is enabled but no certificate key path is set")
		}
		if len(m.SSL.Protocols) == 0 {
			warn("SSL is enabled but no protocols are selected")
		}
	}
	if m.SSL.HTTPRedirect && !m.SSL.Enabled {
		warn("HTTP to HTTPS redirect is enabled but SSL is disabled")
	}

	if m.Proxy.Enabled && m.Proxy.BackendAddress == "" {
		warn("reverse proxy is enabled but no backend address is set")
	}

	if m.Security.BasicAuth {
		if !m.SSL.Enabled {
			warn("basic authentication without SSL sends credentials in cleartext")
		}
		if m.Security.BasicAuthUserFile == "" {
			warn("basic authentication is enabled but no user file is set")
		}
	}
	if m.Security.RateLimit && m.Security.RateLimitRPS < 0 {
		warn("rate limit requests per second must not be negative")
	}

	if m.Upstream.Enabled && len(m.Upstream.Servers) == 0 {
		warn("upstream pool %q has no servers", m.Upstream.Name)
	}

	for _, loc := range m.Locations {
		if loc.Path == "" {
			warn("location with empty path")
			continue
		}
		if loc.Type == LocationRedirect && loc.RedirectTarget == "" {
			warn("redirect location %q has no target", loc.Path)
		}
		if loc.Type == LocationProxy && loc.ProxyPass == "" && m.Proxy.BackendAddress == "" {
			warn("proxy location %q has no upstream address", loc.Path)
		}
	}

	return warnings
}
