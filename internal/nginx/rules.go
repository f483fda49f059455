package nginx

// Rules is the fixed lint catalog, in file order. Sweep order matters for
// fix-all: later rules see the effects of earlier fixes within a pass. Rule
// IDs are stable and must not change across refactors.
var Rules = []Rule{
	{
		ID:       "security-server-tokens",
		Title:    "Server version exposed",
		Message:  "server_tokens is not disabled, so nginx advertises its version in responses and error pages.",
		Category: CategorySecurity,
		Severity: SeverityWarning,
		DocsURL:  "https://nginx.org/en/docs/http/ngx_http_core_module.html#server_tokens",
		Test: func(m *ServerConfig) bool {
			return !m.Security.HideVersion
		},
		Fix: func(m *ServerConfig) *Patch {
			return &Patch{Security: &SecurityPatch{HideVersion: boolPtr(true)}}
		},
	},
	{
		ID:       "security-ssl-enabled-missing-certs",
		Title:    "SSL enabled without certificates",
		Message:  "SSL is enabled but the certificate or key path is empty; nginx will refuse to start.",
		Category: CategorySecurity,
		Severity: SeverityError,
		Test: func(m *ServerConfig) bool {
			return m.SSL.Enabled && (m.SSL.CertificatePath == "" || m.SSL.CertificateKeyPath == "")
		},
	},
	{
		ID:       "security-ssl-weak-protocols",
		Title:    "Weak TLS protocols enabled",
		Message:  "The protocol list includes SSLv3, TLSv1 or TLSv1.1, all of which are deprecated and exploitable.",
		Category: CategorySecurity,
		Severity: SeverityError,
		DocsURL:  "https://nginx.org/en/docs/http/ngx_http_ssl_module.html#ssl_protocols",
		Test: func(m *ServerConfig) bool {
			if !m.SSL.Enabled {
				return false
			}
			for _, p := range m.SSL.Protocols {
				switch p {
				case "SSLv3", "TLSv1", "TLSv1.1":
					return true
				}
			}
			return false
		},
		Fix: func(m *ServerConfig) *Patch {
			return &Patch{SSL: &SSLPatch{Protocols: stringsPtr([]string{"TLSv1.2", "TLSv1.3"})}}
		},
	},
	{
		ID:       "security-legacy-cipher-preset",
		Title:    "Legacy cipher preset selected",
		Message:  "The legacy cipher preset allows weak suites kept only for very old clients.",
		Category: CategorySecurity,
		Severity: SeverityWarning,
		Test: func(m *ServerConfig) bool {
			return m.SSL.Enabled && m.SSL.CipherPreset == CipherLegacy
		},
		Fix: func(m *ServerConfig) *Patch {
			return &Patch{SSL: &SSLPatch{CipherPreset: presetPtr(CipherIntermediate)}}
		},
	},
	{
		ID:       "security-no-hsts",
		Title:    "HSTS not enabled",
		Message:  "The site serves HTTPS but does not send Strict-Transport-Security, so clients may still be downgraded.",
		Category: CategorySecurity,
		Severity: SeverityInfo,
		Test: func(m *ServerConfig) bool {
			return m.SSL.Enabled && !m.SSL.HSTS
		},
		Fix: func(m *ServerConfig) *Patch {
			return &Patch{SSL: &SSLPatch{HSTS: boolPtr(true)}}
		},
	},
	{
		ID:       "security-missing-security-headers",
		Title:    "Security headers disabled",
		Message:  "The standard hardening headers (X-Frame-Options, X-Content-Type-Options and friends) are not sent.",
		Category: CategorySecurity,
		Severity: SeverityWarning,
		Test: func(m *ServerConfig) bool {
			return !m.Security.SecurityHeaders
		},
		Fix: func(m *ServerConfig) *Patch {
			return &Patch{Security: &SecurityPatch{SecurityHeaders: boolPtr(true)}}
		},
	},
	{
		ID:       "security-basic-auth-no-ssl",
		Title:    "Basic auth over plain HTTP",
		Message:  "Basic authentication is enabled without SSL; credentials travel base64-encoded in cleartext.",
		Category: CategorySecurity,
		Severity: SeverityWarning,
		Test: func(m *ServerConfig) bool {
			return m.Security.BasicAuth && !m.SSL.Enabled
		},
	},
	{
		ID:       "security-no-rate-limit",
		Title:    "No request rate limiting",
		Message:  "No rate limit is configured; a single client can exhaust the server with unbounded requests.",
		Category: CategorySecurity,
		Severity: SeverityInfo,
		Test: func(m *ServerConfig) bool {
			return !m.Security.RateLimit
		},
	},
	{
		ID:       "perf-gzip-disabled",
		Title:    "Gzip compression disabled",
		Message:  "Responses are served uncompressed; enabling gzip typically shrinks text assets by 60-80%.",
		Category: CategoryPerformance,
		Severity: SeverityWarning,
		DocsURL:  "https://nginx.org/en/docs/http/ngx_http_gzip_module.html",
		Test: func(m *ServerConfig) bool {
			return !m.Performance.Gzip
		},
		Fix: func(m *ServerConfig) *Patch {
			p := &PerformancePatch{Gzip: boolPtr(true)}
			if len(m.Performance.GzipTypes) == 0 {
				p.GzipTypes = stringsPtr(append([]string(nil), DefaultGzipTypes...))
			}
			return &Patch{Performance: p}
		},
	},
	{
		ID:       "perf-no-http2",
		Title:    "HTTP/2 not enabled",
		Message:  "The site serves HTTPS without HTTP/2, giving up multiplexing and header compression for free.",
		Category: CategoryPerformance,
		Severity: SeverityInfo,
		Test: func(m *ServerConfig) bool {
			return m.SSL.Enabled && !m.Performance.HTTP2
		},
		Fix: func(m *ServerConfig) *Patch {
			return &Patch{Performance: &PerformancePatch{HTTP2: boolPtr(true)}}
		},
	},
	{
		ID:       "perf-no-static-caching",
		Title:    "Static asset caching disabled",
		Message:  "Static assets are served without cache headers, forcing clients to refetch them on every visit.",
		Category: CategoryPerformance,
		Severity: SeverityInfo,
		Test: func(m *ServerConfig) bool {
			return !m.Proxy.Enabled && !m.Performance.StaticCaching
		},
		Fix: func(m *ServerConfig) *Patch {
			p := &PerformancePatch{StaticCaching: boolPtr(true)}
			if m.Performance.CacheDuration == "" {
				p.CacheDuration = stringPtr("30d")
			}
			return &Patch{Performance: p}
		},
	},
	{
		ID:       "perf-keepalive-missing",
		Title:    "Keepalive timeout unset",
		Message:  "keepalive_timeout is zero, so every request pays full connection setup cost.",
		Category: CategoryPerformance,
		Severity: SeverityInfo,
		Test: func(m *ServerConfig) bool {
			return m.Performance.KeepaliveTimeout <= 0
		},
		Fix: func(m *ServerConfig) *Patch {
			return &Patch{Performance: &PerformancePatch{KeepaliveTimeout: intPtr(65)}}
		},
	},
	{
		ID:       "perf-large-body-size",
		Title:    "Very large client body limit",
		Message:  "client_max_body_size exceeds 1 GB; oversized uploads tie up workers and disk.",
		Category: CategoryPerformance,
		Severity: SeverityInfo,
		Test: func(m *ServerConfig) bool {
			switch m.Performance.ClientMaxBodyUnit {
			case UnitGB:
				return m.Performance.ClientMaxBodySize > 1
			default:
				return m.Performance.ClientMaxBodySize > 1024
			}
		},
	},
	{
		ID:       "correctness-proxy-enabled-without-backend",
		Title:    "Proxy enabled without backend",
		Message:  "Reverse proxying is enabled but no backend address is set; proxied requests have nowhere to go.",
		Category: CategoryCorrectness,
		Severity: SeverityError,
		Test: func(m *ServerConfig) bool {
			return m.Proxy.Enabled && m.Proxy.BackendAddress == ""
		},
	},
	{
		ID:       "correctness-upstream-no-servers",
		Title:    "Upstream pool has no servers",
		Message:  "The upstream pool is enabled but empty; nginx will fail to resolve it at startup.",
		Category: CategoryCorrectness,
		Severity: SeverityError,
		Test: func(m *ServerConfig) bool {
			return m.Upstream.Enabled && len(m.Upstream.Servers) == 0
		},
		Fix: func(m *ServerConfig) *Patch {
			return &Patch{Upstream: &UpstreamPatch{Enabled: boolPtr(false)}}
		},
	},
	{
		ID:       "correctness-redirect-bad-code",
		Title:    "Redirect with unsupported status code",
		Message:  "A redirect location uses a status other than 301 or 302.",
		Category: CategoryCorrectness,
		Severity: SeverityError,
		Test: func(m *ServerConfig) bool {
			for _, loc := range m.Locations {
				if loc.Type == LocationRedirect && loc.RedirectCode != 301 && loc.RedirectCode != 302 {
					return true
				}
			}
			return false
		},
		Fix: func(m *ServerConfig) *Patch {
			locs := append([]LocationConfig(nil), m.Locations...)
			for i := range locs {
				if locs[i].Type == LocationRedirect && locs[i].RedirectCode != 301 && locs[i].RedirectCode != 302 {
					locs[i].RedirectCode = 301
				}
			}
			return &Patch{Locations: &locs}
		},
	},
	{
		ID:       "correctness-duplicate-location-paths",
		Title:    "Duplicate location paths",
		Message:  "Two locations share the same path and match modifier; nginx rejects duplicate locations.",
		Category: CategoryCorrectness,
		Severity: SeverityError,
		Test: func(m *ServerConfig) bool {
			seen := map[string]bool{}
			for _, loc := range m.Locations {
				key := string(loc.Match) + " " + loc.Path
				if seen[key] {
					return true
				}
				seen[key] = true
			}
			return false
		},
	},
	{
		ID:       "correctness-root-missing",
		Title:    "Document root unset",
		Message:  "The server is not a pure proxy and has no document root, so static requests will 404.",
		Category: CategoryCorrectness,
		Severity: SeverityWarning,
		Test: func(m *ServerConfig) bool {
			return !m.Proxy.Enabled && m.Root == ""
		},
		Fix: func(m *ServerConfig) *Patch {
			return &Patch{Root: stringPtr("/var/www/html")}
		},
	},
	{
		ID:       "bp-no-server-name",
		Title:    "No server name configured",
		Message:  "Without a server_name this block only matches as the default server for its port.",
		Category: CategoryBestPractice,
		Severity: SeverityInfo,
		Test: func(m *ServerConfig) bool {
			return len(m.ServerNames) == 0
		},
	},
	{
		ID:       "bp-access-log-disabled",
		Title:    "Access log disabled",
		Message:  "Access logging is off; traffic analysis and incident forensics lose their primary source.",
		Category: CategoryBestPractice,
		Severity: SeverityInfo,
		Test: func(m *ServerConfig) bool {
			return !m.Logging.AccessLog
		},
		Fix: func(m *ServerConfig) *Patch {
			p := &LoggingPatch{AccessLog: boolPtr(true)}
			if m.Logging.AccessLogPath == "" {
				p.AccessLogPath = stringPtr("/var/log/nginx/access.log")
			}
			return &Patch{Logging: p}
		},
	},
	{
		ID:       "bp-error-log-disabled",
		Title:    "Error log disabled",
		Message:  "Error logging is off; startup and runtime failures will be silent.",
		Category: CategoryBestPractice,
		Severity: SeverityInfo,
		Test: func(m *ServerConfig) bool {
			return !m.Logging.ErrorLog
		},
		Fix: func(m *ServerConfig) *Patch {
			p := &LoggingPatch{ErrorLog: boolPtr(true)}
			if m.Logging.ErrorLogPath == "" {
				p.ErrorLogPath = stringPtr("/var/log/nginx/error.log")
			}
			return &Patch{Logging: p}
		},
	},
	{
		ID:       "bp-index-missing",
		Title:    "No index files configured",
		Message:  "The server serves static content but lists no index filenames for directory requests.",
		Category: CategoryBestPractice,
		Severity: SeverityInfo,
		Test: func(m *ServerConfig) bool {
			return !m.Proxy.Enabled && len(m.Index) == 0
		},
		Fix: func(m *ServerConfig) *Patch {
			return &Patch{Index: stringsPtr([]string{"index.html", "index.htm"})}
		},
	},
}
