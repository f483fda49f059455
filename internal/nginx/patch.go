package nginx

// Patch is a partial model produced by a lint fix. Nil fields are left
// untouched on merge; set fields replace the corresponding model field
// wholesale. Sub-record patches merge field by field so a fix can adjust a
// single nested flag without clobbering its siblings.
type Patch struct {
	ServerNames *[]string `json:"server_names,omitempty"`
	ListenPort  *int      `json:"listen_port,omitempty"`
	IPv6        *bool     `json:"ipv6,omitempty"`
	Root        *string   `json:"root,omitempty"`
	Index       *[]string `json:"index,omitempty"`

	SSL         *SSLPatch         `json:"ssl,omitempty"`
	Proxy       *ProxyPatch       `json:"proxy,omitempty"`
	Security    *SecurityPatch    `json:"security,omitempty"`
	Performance *PerformancePatch `json:"performance,omitempty"`
	Logging     *LoggingPatch     `json:"logging,omitempty"`
	Upstream    *UpstreamPatch    `json:"upstream,omitempty"`

	Locations        *[]LocationConfig `json:"locations,omitempty"`
	CustomDirectives *[]string         `json:"custom_directives,omitempty"`
}

type SSLPatch struct {
	Enabled            *bool         `json:"enabled,omitempty"`
	CertificatePath    *string       `json:"certificate_path,omitempty"`
	CertificateKeyPath *string       `json:"certificate_key_path,omitempty"`
	Protocols          *[]string     `json:"protocols,omitempty"`
	HSTS               *bool         `json:"hsts,omitempty"`
	OCSPStapling       *bool         `json:"ocsp_stapling,omitempty"`
	HTTPRedirect       *bool         `json:"http_redirect,omitempty"`
	CipherPreset       *CipherPreset `json:"cipher_preset,omitempty"`
}

type ProxyPatch struct {
	Enabled        *bool         `json:"enabled,omitempty"`
	BackendAddress *string       `json:"backend_address,omitempty"`
	Websocket      *bool         `json:"websocket,omitempty"`
	ForwardRealIP  *bool         `json:"forward_real_ip,omitempty"`
	Headers        *[]HeaderPair `json:"headers,omitempty"`
}

type SecurityPatch struct {
	RateLimit         *bool     `json:"rate_limit,omitempty"`
	RateLimitRPS      *int      `json:"rate_limit_rps,omitempty"`
	RateLimitBurst    *int      `json:"rate_limit_burst,omitempty"`
	SecurityHeaders   *bool     `json:"security_headers,omitempty"`
	HideVersion       *bool     `json:"hide_version,omitempty"`
	AllowIPs          *[]string `json:"allow_ips,omitempty"`
	DenyIPs           *[]string `json:"deny_ips,omitempty"`
	BasicAuth         *bool     `json:"basic_auth,omitempty"`
	BasicAuthRealm    *string   `json:"basic_auth_realm,omitempty"`
	BasicAuthUserFile *string   `json:"basic_auth_user_file,omitempty"`
}

type PerformancePatch struct {
	Gzip              *bool         `json:"gzip,omitempty"`
	GzipTypes         *[]string     `json:"gzip_types,omitempty"`
	Brotli            *bool         `json:"brotli,omitempty"`
	StaticCaching     *bool         `json:"static_caching,omitempty"`
	CacheDuration     *string       `json:"cache_duration,omitempty"`
	HTTP2             *bool         `json:"http2,omitempty"`
	ClientMaxBodySize *int          `json:"client_max_body_size,omitempty"`
	ClientMaxBodyUnit *BodySizeUnit `json:"client_max_body_unit,omitempty"`
	KeepaliveTimeout  *int          `json:"keepalive_timeout,omitempty"`
	WorkerConnections *int          `json:"worker_connections,omitempty"`
}

type LoggingPatch struct {
	AccessLog     *bool     `json:"access_log,omitempty"`
	AccessLogPath *string   `json:"access_log_path,omitempty"`
	ErrorLog      *bool     `json:"error_log,omitempty"`
	ErrorLogPath  *string   `json:"error_log_path,omitempty"`
	ErrorLogLevel *LogLevel `json:"error_log_level,omitempty"`
}

type UpstreamPatch struct {
	Enabled *bool             `json:"enabled,omitempty"`
	Name    *string           `json:"name,omitempty"`
	Method  *BalanceMethod    `json:"method,omitempty"`
	Servers *[]UpstreamServer `json:"servers,omitempty"`
}

// Apply merges the patch into the model in place.
func (p *Patch) Apply(m *ServerConfig) {
	if p == nil {
		return
	}
	setStrings(&m.ServerNames, p.ServerNames)
	setInt(&m.ListenPort, p.ListenPort)
	setBool(&m.IPv6, p.IPv6)
	setString(&m.Root, p.Root)
	setStrings(&m.Index, p.Index)

	if p.SSL != nil {
		s := p.SSL
		setBool(&m.SSL.Enabled, s.Enabled)
		setString(&m.SSL.CertificatePath, s.CertificatePath)
		setString(&m.SSL.CertificateKeyPath, s.CertificateKeyPath)
		setStrings(&m.SSL.Protocols, s.Protocols)
		setBool(&m.SSL.HSTS, s.HSTS)
		setBool(&m.SSL.OCSPStapling, s.OCSPStapling)
		setBool(&m.SSL.HTTPRedirect, s.HTTPRedirect)
		if s.CipherPreset != nil {
			m.SSL.CipherPreset = *s.CipherPreset
		}
	}
	if p.Proxy != nil {
		s := p.Proxy
		setBool(&m.Proxy.Enabled, s.Enabled)
		setString(&m.Proxy.BackendAddress, s.BackendAddress)
		setBool(&m.Proxy.Websocket, s.Websocket)
		setBool(&m.Proxy.ForwardRealIP, s.ForwardRealIP)
		if s.Headers != nil {
			m.Proxy.Headers = append([]HeaderPair(nil), (*s.Headers)...)
		}
	}
	if p.Security != nil {
		s := p.Security
		setBool(&m.Security.RateLimit, s.RateLimit)
		setInt(&m.Security.RateLimitRPS, s.RateLimitRPS)
		setInt(&m.Security.RateLimitBurst, s.RateLimitBurst)
		setBool(&m.Security.SecurityHeaders, s.SecurityHeaders)
		setBool(&m.Security.HideVersion, s.HideVersion)
		setStrings(&m.Security.AllowIPs, s.AllowIPs)
		setStrings(&m.Security.DenyIPs, s.DenyIPs)
		setBool(&m.Security.BasicAuth, s.BasicAuth)
		setString(&m.Security.BasicAuthRealm, s.BasicAuthRealm)
		setString(&m.Security.BasicAuthUserFile, s.BasicAuthUserFile)
	}
	if p.Performance != nil {
		s := p.Performance
		setBool(&m.Performance.Gzip, s.Gzip)
		setStrings(&m.Performance.GzipTypes, s.GzipTypes)
		setBool(&m.Performance.Brotli, s.Brotli)
		setBool(&m.Performance.StaticCaching, s.StaticCaching)
		setString(&m.Performance.CacheDuration, s.CacheDuration)
		setBool(&m.Performance.HTTP2, s.HTTP2)
		setInt(&m.Performance.ClientMaxBodySize, s.ClientMaxBodySize)
		if s.ClientMaxBodyUnit != nil {
			m.Performance.ClientMaxBodyUnit = *s.ClientMaxBodyUnit
		}
		setInt(&m.Performance.KeepaliveTimeout, s.KeepaliveTimeout)
		setInt(&m.Performance.WorkerConnections, s.WorkerConnections)
	}
	if p.Logging != nil {
		s := p.Logging
		setBool(&m.Logging.AccessLog, s.AccessLog)
		setString(&m.Logging.AccessLogPath, s.AccessLogPath)
		setBool(&m.Logging.ErrorLog, s.ErrorLog)
		setString(&m.Logging.ErrorLogPath, s.ErrorLogPath)
		if s.ErrorLogLevel != nil {
			m.Logging.ErrorLogLevel = *s.ErrorLogLevel
		}
	}
	if p.Upstream != nil {
		s := p.Upstream
		setBool(&m.Upstream.Enabled, s.Enabled)
		setString(&m.Upstream.Name, s.Name)
		if s.Method != nil {
			m.Upstream.Method = *s.Method
		}
		if s.Servers != nil {
			m.Upstream.Servers = append([]UpstreamServer(nil), (*s.Servers)...)
		}
	}

	if p.Locations != nil {
		m.Locations = append([]LocationConfig(nil), (*p.Locations)...)
	}
	setStrings(&m.CustomDirectives, p.CustomDirectives)
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setStrings(dst *[]string, src *[]string) {
	if src != nil {
		*dst = append([]string(nil), (*src)...)
	}
}

func boolPtr(v bool) *bool                   { return &v }
func intPtr(v int) *int                      { return &v }
func stringPtr(v string) *string             { return &v }
func stringsPtr(v []string) *[]string        { return &v }
func presetPtr(v CipherPreset) *CipherPreset { return &v }
