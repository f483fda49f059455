// Package nginx implements the structured nginx configuration model and the
// transformations around it: generating configuration text from a model,
// importing existing configuration text back into a model, validating a
// model, and linting it with auto-fixable rules.
package nginx

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// CipherPreset names a fixed TLS cipher suite selection.
type CipherPreset string

const (
	CipherModern       CipherPreset = "modern"
	CipherIntermediate CipherPreset = "intermediate"
	CipherLegacy       CipherPreset = "legacy"
)

// BodySizeUnit is the unit for client_max_body_size.
type BodySizeUnit string

const (
	UnitMB BodySizeUnit = "MB"
	UnitGB BodySizeUnit = "GB"
)

// LogLevel is the error_log severity.
type LogLevel string

const (
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelCrit  LogLevel = "crit"
)

// BalanceMethod selects how an upstream pool distributes requests.
type BalanceMethod string

const (
	BalanceRoundRobin BalanceMethod = "round_robin"
	BalanceLeastConn  BalanceMethod = "least_conn"
	BalanceIPHash     BalanceMethod = "ip_hash"
	BalanceRandom     BalanceMethod = "random"
)

// MatchType is the location matching modifier.
type MatchType string

const (
	MatchPrefix           MatchType = "prefix"
	MatchExact            MatchType = "exact"
	MatchRegex            MatchType = "regex"
	MatchRegexInsensitive MatchType = "regex_insensitive"
)

// LocationType determines which fields of a LocationConfig are meaningful.
type LocationType string

const (
	LocationStatic   LocationType = "static"
	LocationProxy    LocationType = "proxy"
	LocationRedirect LocationType = "redirect"
	LocationCustom   LocationType = "custom"
)

// HeaderPair is a single custom header name/value.
type HeaderPair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SSLConfig groups the TLS-related settings of a server.
type SSLConfig struct {
	Enabled            bool         `json:"enabled"`
	CertificatePath    string       `json:"certificate_path"`
	CertificateKeyPath string       `json:"certificate_key_path"`
	Protocols          []string     `json:"protocols"`
	HSTS               bool         `json:"hsts"`
	OCSPStapling       bool         `json:"ocsp_stapling"`
	HTTPRedirect       bool         `json:"http_redirect"`
	CipherPreset       CipherPreset `json:"cipher_preset"`
}

// ProxyConfig groups the reverse-proxy settings of a server.
type ProxyConfig struct {
	Enabled        bool         `json:"enabled"`
	BackendAddress string       `json:"backend_address"`
	Websocket      bool         `json:"websocket"`
	ForwardRealIP  bool         `json:"forward_real_ip"`
	Headers        []HeaderPair `json:"headers"`
}

// SecurityConfig groups hardening and access-control settings.
type SecurityConfig struct {
	RateLimit         bool     `json:"rate_limit"`
	RateLimitRPS      int      `json:"rate_limit_rps"`
	RateLimitBurst    int      `json:"rate_limit_burst"`
	SecurityHeaders   bool     `json:"security_headers"`
	HideVersion       bool     `json:"hide_version"`
	AllowIPs          []string `json:"allow_ips"`
	DenyIPs           []string `json:"deny_ips"`
	BasicAuth         bool     `json:"basic_auth"`
	BasicAuthRealm    string   `json:"basic_auth_realm"`
	BasicAuthUserFile string   `json:"basic_auth_user_file"`
}

// PerformanceConfig groups throughput and caching settings.
// WorkerConnections is advisory only: it belongs to the events block, which
// is outside server scope, so the generator never emits it.
type PerformanceConfig struct {
	Gzip              bool         `json:"gzip"`
	GzipTypes         []string     `json:"gzip_types"`
	Brotli            bool         `json:"brotli"`
	StaticCaching     bool         `json:"static_caching"`
	CacheDuration     string       `json:"cache_duration"`
	HTTP2             bool         `json:"http2"`
	ClientMaxBodySize int          `json:"client_max_body_size"`
	ClientMaxBodyUnit BodySizeUnit `json:"client_max_body_unit"`
	KeepaliveTimeout  int          `json:"keepalive_timeout"`
	WorkerConnections int          `json:"worker_connections"`
}

// LoggingConfig groups access and error log settings.
type LoggingConfig struct {
	AccessLog     bool     `json:"access_log"`
	AccessLogPath string   `json:"access_log_path"`
	ErrorLog      bool     `json:"error_log"`
	ErrorLogPath  string   `json:"error_log_path"`
	ErrorLogLevel LogLevel `json:"error_log_level"`
}

// UpstreamServer is one backend entry in an upstream pool.
type UpstreamServer struct {
	Address     string `json:"address"`
	Weight      int    `json:"weight"`
	MaxFails    int    `json:"max_fails"`
	FailTimeout int    `json:"fail_timeout"`
}

// UpstreamConfig describes a load-balanced backend pool.
type UpstreamConfig struct {
	Enabled bool             `json:"enabled"`
	Name    string           `json:"name"`
	Method  BalanceMethod    `json:"method"`
	Servers []UpstreamServer `json:"servers"`
}

// LocationConfig describes one location block. Only the fields relevant to
// its Type are meaningful; the rest stay at their zero values.
type LocationConfig struct {
	Path  string       `json:"path"`
	Match MatchType    `json:"match"`
	Type  LocationType `json:"type"`

	// static
	Root        string `json:"root,omitempty"`
	TryFiles    string `json:"try_files,omitempty"`
	Index       string `json:"index,omitempty"`
	Autoindex   bool   `json:"autoindex,omitempty"`
	CacheExpiry string `json:"cache_expiry,omitempty"`

	// proxy
	ProxyPass string       `json:"proxy_pass,omitempty"`
	Websocket bool         `json:"websocket,omitempty"`
	Headers   []HeaderPair `json:"headers,omitempty"`

	// redirect
	RedirectTarget string `json:"redirect_target,omitempty"`
	RedirectCode   int    `json:"redirect_code,omitempty"`

	// custom: raw directive text, one directive per line
	Custom string `json:"custom,omitempty"`
}

// ServerConfig is the structured representation of a single nginx server.
// It owns all of its data; cloning produces a fully independent value.
type ServerConfig struct {
	ServerNames []string `json:"server_names"`
	ListenPort  int      `json:"listen_port"`
	IPv6        bool     `json:"ipv6"`
	Root        string   `json:"root"`
	Index       []string `json:"index"`

	SSL         SSLConfig         `json:"ssl"`
	Proxy       ProxyConfig       `json:"proxy"`
	Security    SecurityConfig    `json:"security"`
	Performance PerformanceConfig `json:"performance"`
	Logging     LoggingConfig     `json:"logging"`
	Upstream    UpstreamConfig    `json:"upstream"`

	Locations []LocationConfig `json:"locations"`

	// CustomDirectives preserves server-scope directives the importer does
	// not model, verbatim, so they survive a model round trip.
	CustomDirectives []string `json:"custom_directives"`
}

// DefaultGzipTypes is the MIME type list applied when gzip is enabled
// without an explicit override.
var DefaultGzipTypes = []string{
	"text/plain",
	"text/css",
	"application/json",
	"application/javascript",
	"image/svg+xml",
}

// DefaultConfig returns a new model with sensible defaults and a single
// static location serving "/".
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		ListenPort: 80,
		Root:       "/var/www/html",
		Index:      []string{"index.html", "index.htm"},
		SSL: SSLConfig{
			Protocols:    []string{"TLSv1.2", "TLSv1.3"},
			CipherPreset: CipherIntermediate,
		},
		Security: SecurityConfig{
			SecurityHeaders: true,
			HideVersion:     true,
		},
		Performance: PerformanceConfig{
			Gzip:              true,
			GzipTypes:         append([]string(nil), DefaultGzipTypes...),
			CacheDuration:     "30d",
			ClientMaxBodySize: 10,
			ClientMaxBodyUnit: UnitMB,
			KeepaliveTimeout:  65,
		},
		Logging: LoggingConfig{
			AccessLog:     true,
			AccessLogPath: "/var/log/nginx/access.log",
			ErrorLog:      true,
			ErrorLogPath:  "/var/log/nginx/error.log",
			ErrorLogLevel: LogLevelWarn,
		},
		Upstream: UpstreamConfig{
			Name:   "backend",
			Method: BalanceRoundRobin,
		},
		Locations: []LocationConfig{DefaultLocation()},
	}
}

// DefaultLocation is the static catch-all location every fresh model starts with.
func DefaultLocation() LocationConfig {
	return LocationConfig{
		Path:     "/",
		Match:    MatchPrefix,
		Type:     LocationStatic,
		TryFiles: "$uri $uri/ =404",
	}
}

// Clone returns a deep copy of the model.
func (c *ServerConfig) Clone() *ServerConfig {
	data, err := json.Marshal(c)
	if err != nil {
		// The model is a closed tree of plain values; marshalling cannot fail.
		panic(fmt.Sprintf("nginx: clone marshal: %v", err))
	}
	out := &ServerConfig{}
	if err := json.Unmarshal(data, out); err != nil {
		panic(fmt.Sprintf("nginx: clone unmarshal: %v", err))
	}
	return out
}

// Signature returns a stable hash of the model's canonical serialized form.
// Two models with equal field values always share a signature.
func (c *ServerConfig) Signature() string {
	data, err := json.Marshal(c)
	if err != nil {
		panic(fmt.Sprintf("nginx: signature marshal: %v", err))
	}
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
