package nginx

import (
	"fmt"
	"strings"
)

// GenerateResult bundles the rendered text with advisory warnings from the
// validator. Warnings never block generation.
type GenerateResult struct {
	Text     string   `json:"text"`
	Warnings []string `json:"warnings"`
}

// Generate renders the model into nginx configuration text. It is a pure
// function of the model's field values: calling it twice on an unchanged
// model yields byte-identical output, and re-importing its output
// regenerates the same text.
func Generate(m *ServerConfig) GenerateResult {
	e := &emitter{}

	if m.Upstream.Enabled && len(m.Upstream.Servers) > 0 {
		e.section("Upstream")
		e.emitUpstream(&m.Upstream)
	}

	if m.Security.RateLimit {
		e.section("Rate Limiting")
		rps := m.Security.RateLimitRPS
		if rps <= 0 {
			rps = 10
		}
		e.line("limit_req_zone $binary_remote_addr zone=%s:10m rate=%dr/s;", rateLimitZoneName, rps)
	}

	if m.SSL.Enabled && m.SSL.HTTPRedirect {
		e.section("HTTP Redirect")
		e.emitRedirectServer(m)
	}

	e.blankBeforeSection()
	e.emitMainServer(m)

	return GenerateResult{Text: e.String(), Warnings: Validate(m)}
}

// emitter accumulates indented lines. Sections at the same scope are
// separated by a single blank line.
type emitter struct {
	b      strings.Builder
	indent int
	empty  bool
}

func (e *emitter) String() string { return e.b.String() }

func (e *emitter) line(format string, args ...interface{}) {
	e.b.WriteString(strings.Repeat("    ", e.indent))
	fmt.Fprintf(&e.b, format, args...)
	e.b.WriteByte('\n')
	e.empty = false
}

func (e *emitter) blankBeforeSection() {
	if !e.empty && e.b.Len() > 0 {
		e.b.WriteByte('\n')
	}
}

func (e *emitter) section(title string) {
	e.blankBeforeSection()
	e.line("# ─── %s ───", title)
}

func (e *emitter) open(format string, args ...interface{}) {
	e.line(format, args...)
	e.indent++
}

func (e *emitter) close() {
	e.indent--
	e.line("}")
}

func (e *emitter) emitUpstream(u *UpstreamConfig) {
	e.open("upstream %s {", u.Name)
	switch u.Method {
	case BalanceLeastConn:
		e.line("least_conn;")
	case BalanceIPHash:
		e.line("ip_hash;")
	case BalanceRandom:
		e.line("random;")
	}
	for _, s := range u.Servers {
		parts := []string{s.Address}
		if s.Weight > 1 {
			parts = append(parts, fmt.Sprintf("weight=%d", s.Weight))
		}
		if s.MaxFails > 0 {
			parts = append(parts, fmt.Sprintf("max_fails=%d", s.MaxFails))
		}
		if s.FailTimeout > 0 {
			parts = append(parts, fmt.Sprintf("fail_timeout=%ds", s.FailTimeout))
		}
		e.line("server %s;", strings.Join(parts, " "))
	}
	e.close()
}

// emitRedirectServer writes the plain-HTTP companion block that forwards
// everything to HTTPS. It always listens on port 80, independent of the main
// block's configured port.
func (e *emitter) emitRedirectServer(m *ServerConfig) {
	e.open("server {")
	e.line("listen 80;")
	if m.IPv6 {
		e.line("listen [::]:80;")
	}
	if len(m.ServerNames) > 0 {
		e.line("server_name %s;", strings.Join(m.ServerNames, " "))
	}
	e.line("return 301 https://$host$request_uri;")
	e.close()
}

func (e *emitter) emitMainServer(m *ServerConfig) {
	e.open("server {")
	e.empty = true // suppress the blank line before the first inner section

	if m.SSL.Enabled {
		suffix := " ssl"
		if m.Performance.HTTP2 {
			suffix += " http2"
		}
		e.line("listen %d%s;", m.ListenPort, suffix)
		if m.IPv6 {
			e.line("listen [::]:%d%s;", m.ListenPort, suffix)
		}
	} else {
		e.line("listen %d;", m.ListenPort)
		if m.IPv6 {
			e.line("listen [::]:%d;", m.ListenPort)
		}
	}
	if len(m.ServerNames) > 0 {
		e.line("server_name %s;", strings.Join(m.ServerNames, " "))
	}
	// Serving from a root and proxying are mutually exclusive strategies.
	if !m.Proxy.Enabled {
		if m.Root != "" {
			e.line("root %s;", m.Root)
		}
		if len(m.Index) > 0 {
			e.line("index %s;", strings.Join(m.Index, " "))
		}
	}

	if m.SSL.Enabled {
		e.section("SSL Configuration")
		e.emitSSL(&m.SSL)
	}

	if securityActive(&m.Security) {
		e.section("Security")
		e.emitSecurity(&m.Security)
	}

	if performanceActive(&m.Performance) {
		e.section("Performance")
		e.emitPerformance(&m.Performance)
	}

	e.section("Logging")
	e.emitLogging(&m.Logging)

	e.section("Locations")
	locations := m.Locations
	if len(locations) == 0 {
		locations = []LocationConfig{syntheticDefaultLocation(m)}
	}
	for _, loc := range locations {
		e.emitLocation(&loc, m)
	}

	if m.Performance.StaticCaching {
		if classes := uncoveredAssetClasses(m); len(classes) > 0 {
			e.section("Static Caching")
			expiry := m.Performance.CacheDuration
			if expiry == "" {
				expiry = "30d"
			}
			for _, ac := range classes {
				e.open("location ~* %s {", ac.Pattern)
				e.line("expires %s;", expiry)
				e.close()
			}
		}
	}

	if len(m.CustomDirectives) > 0 {
		e.section("Custom Directives")
		for _, d := range m.CustomDirectives {
			e.line("%s", d)
		}
	}

	e.close()
}

func (e *emitter) emitSSL(s *SSLConfig) {
	if s.CertificatePath != "" {
		e.line("ssl_certificate %s;", s.CertificatePath)
	}
	if s.CertificateKeyPath != "" {
		e.line("ssl_certificate_key %s;", s.CertificateKeyPath)
	}
	if len(s.Protocols) > 0 {
		e.line("ssl_protocols %s;", strings.Join(s.Protocols, " "))
	}
	preset, ok := cipherPresets[s.CipherPreset]
	if !ok {
		preset = cipherPresets[CipherIntermediate]
	}
	e.line("ssl_ciphers %s;", preset.Ciphers)
	if preset.PreferServerCiphers {
		e.line("ssl_prefer_server_ciphers on;")
	} else {
		e.line("ssl_prefer_server_ciphers off;")
	}
	e.line("ssl_session_cache %s;", preset.SessionCache)
	e.line("ssl_session_timeout %s;", preset.SessionTimeout)
	if preset.SessionTicketsOff {
		e.line("ssl_session_tickets off;")
	}
	if s.OCSPStapling {
		e.line("ssl_stapling on;")
		e.line("ssl_stapling_verify on;")
	}
	if s.HSTS {
		e.line(`add_header Strict-Transport-Security "%s" always;`, hstsHeaderValue)
	}
}

func securityActive(s *SecurityConfig) bool {
	return s.HideVersion || s.SecurityHeaders || s.RateLimit || s.BasicAuth ||
		len(s.AllowIPs) > 0 || len(s.DenyIPs) > 0
}

func (e *emitter) emitSecurity(s *SecurityConfig) {
	if s.HideVersion {
		e.line("server_tokens off;")
	}
	if s.SecurityHeaders {
		for _, h := range securityHeaders {
			e.line(`add_header %s "%s" always;`, h.Name, h.Value)
		}
	}
	for _, ip := range s.AllowIPs {
		e.line("allow %s;", ip)
	}
	for _, ip := range s.DenyIPs {
		e.line("deny %s;", ip)
	}
	if s.BasicAuth {
		realm := s.BasicAuthRealm
		if realm == "" {
			realm = "Restricted"
		}
		e.line(`auth_basic "%s";`, realm)
		if s.BasicAuthUserFile != "" {
			e.line("auth_basic_user_file %s;", s.BasicAuthUserFile)
		}
	}
	if s.RateLimit {
		if s.RateLimitBurst > 0 {
			e.line("limit_req zone=%s burst=%d nodelay;", rateLimitZoneName, s.RateLimitBurst)
		} else {
			e.line("limit_req zone=%s;", rateLimitZoneName)
		}
	}
}

func performanceActive(p *PerformanceConfig) bool {
	return p.Gzip || p.Brotli || p.ClientMaxBodySize > 0 || p.KeepaliveTimeout > 0
}

func (e *emitter) emitPerformance(p *PerformanceConfig) {
	if p.Gzip {
		e.line("gzip on;")
		e.line("gzip_vary on;")
		if len(p.GzipTypes) > 0 {
			e.line("gzip_types %s;", strings.Join(p.GzipTypes, " "))
		}
	}
	if p.Brotli {
		e.line("brotli on;")
		// Brotli compresses the same type set unless the model overrides it.
		if len(p.GzipTypes) > 0 {
			e.line("brotli_types %s;", strings.Join(p.GzipTypes, " "))
		}
	}
	if p.ClientMaxBodySize > 0 {
		unit := "m"
		if p.ClientMaxBodyUnit == UnitGB {
			unit = "g"
		}
		e.line("client_max_body_size %d%s;", p.ClientMaxBodySize, unit)
	}
	if p.KeepaliveTimeout > 0 {
		e.line("keepalive_timeout %d;", p.KeepaliveTimeout)
	}
}

func (e *emitter) emitLogging(l *LoggingConfig) {
	if l.AccessLog && l.AccessLogPath != "" {
		e.line("access_log %s;", l.AccessLogPath)
	} else {
		e.line("access_log off;")
	}
	if l.ErrorLog && l.ErrorLogPath != "" {
		level := l.ErrorLogLevel
		if level == "" {
			level = LogLevelWarn
		}
		e.line("error_log %s %s;", l.ErrorLogPath, level)
	}
}

// syntheticDefaultLocation guarantees the emitted file always routes
// somewhere: a proxy stanza to the configured backend when reverse proxying
// is on, otherwise a static stanza serving the model root.
func syntheticDefaultLocation(m *ServerConfig) LocationConfig {
	if m.Proxy.Enabled {
		return LocationConfig{
			Path:      "/",
			Match:     MatchPrefix,
			Type:      LocationProxy,
			ProxyPass: m.Proxy.BackendAddress,
			Websocket: m.Proxy.Websocket,
			Headers:   m.Proxy.Headers,
		}
	}
	return LocationConfig{
		Path:     "/",
		Match:    MatchPrefix,
		Type:     LocationStatic,
		Root:     m.Root,
		TryFiles: "$uri $uri/ =404",
		Index:    strings.Join(m.Index, " "),
	}
}

func (e *emitter) emitLocation(loc *LocationConfig, m *ServerConfig) {
	switch loc.Match {
	case MatchExact:
		e.open("location = %s {", loc.Path)
	case MatchRegex:
		e.open("location ~ %s {", loc.Path)
	case MatchRegexInsensitive:
		e.open("location ~* %s {", loc.Path)
	default:
		e.open("location %s {", loc.Path)
	}

	switch loc.Type {
	case LocationProxy:
		e.line("proxy_pass %s;", loc.ProxyPass)
		e.line("proxy_http_version 1.1;")
		if loc.Websocket {
			e.line("proxy_set_header Upgrade $http_upgrade;")
			e.line(`proxy_set_header Connection "upgrade";`)
		}
		if m.Proxy.ForwardRealIP {
			for _, h := range realIPHeaders {
				e.line("proxy_set_header %s %s;", h.Name, h.Value)
			}
		}
		for _, h := range loc.Headers {
			e.line("proxy_set_header %s %s;", h.Name, headerValue(h.Value))
		}
		if loc.Websocket {
			e.line("proxy_read_timeout 86400;")
			e.line("proxy_buffering off;")
		}
	case LocationRedirect:
		e.line("return %d %s;", loc.RedirectCode, loc.RedirectTarget)
	case LocationCustom:
		for _, raw := range strings.Split(loc.Custom, "\n") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			e.line("%s", raw)
		}
	default: // static
		if loc.Root != "" {
			e.line("root %s;", loc.Root)
		}
		if loc.TryFiles != "" {
			e.line("try_files %s;", loc.TryFiles)
		}
		if loc.Index != "" {
			e.line("index %s;", loc.Index)
		}
		if loc.Autoindex {
			e.line("autoindex on;")
		}
		if loc.CacheExpiry != "" {
			e.line("expires %s;", loc.CacheExpiry)
		}
	}

	e.close()
}

func headerValue(v string) string {
	if strings.ContainsAny(v, " \t") {
		return `"` + v + `"`
	}
	return v
}

// uncoveredAssetClasses filters the catch-all table down to classes no
// user-authored regex location already covers, so repeated
// import→edit→export cycles never duplicate cache locations.
func uncoveredAssetClasses(m *ServerConfig) []assetClass {
	var out []assetClass
	for _, ac := range assetClasses {
		covered := false
		for _, loc := range m.Locations {
			if loc.Match != MatchRegex && loc.Match != MatchRegexInsensitive {
				continue
			}
			if patternsOverlap(loc.Path, ac.Pattern) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, ac)
		}
	}
	return out
}

// patternsOverlap reports whether two extension-alternation regexes share at
// least one extension.
func patternsOverlap(a, b string) bool {
	for _, ext := range patternExtensions(b) {
		for _, other := range patternExtensions(a) {
			if ext == other {
				return true
			}
		}
	}
	return false
}

func patternExtensions(pattern string) []string {
	start := strings.Index(pattern, "(")
	end := strings.Index(pattern, ")")
	if start < 0 || end < 0 || end <= start {
		return []string{pattern}
	}
	return strings.Split(pattern[start+1:end], "|")
}
