package nginx

import (
	"fmt"
	"strconv"
	"strings"
)

// ImportResult is the outcome of mapping a parsed tree onto a model. Import
// is total: it always returns a usable model, degrading to warnings for
// constructs it cannot represent. Errors carry the syntax problems recorded
// by the AST builder.
type ImportResult struct {
	Model    *ServerConfig `json:"model"`
	Warnings []string      `json:"warnings"`
	Errors   []string      `json:"errors"`
}

// ImportText runs the full parse path: tokenize, build the tree, import.
func ImportText(text string) *ImportResult {
	tree, errs := BuildAST(Tokenize(text))
	res := Import(tree)
	res.Errors = append(errs, res.Errors...)
	return res
}

// Import walks the tree and populates a ServerConfig. Exactly one server
// block and at most one upstream block are imported; extras produce count
// warnings. The generator's own artifacts — the HTTP→HTTPS companion block,
// the file-scope rate-limit zone and the static-caching catch-alls — are
// folded back into the flags that produced them so a generate→import cycle
// reaches a fixed point.
func Import(tree *Tree) *ImportResult {
	res := &ImportResult{}
	imp := &importer{res: res}

	servers, upstreams := imp.collect(tree)

	var mains []*Node
	redirectSeen := false
	for _, s := range servers {
		if isRedirectCompanion(s) {
			redirectSeen = true
			continue
		}
		mains = append(mains, s)
	}

	if len(mains) == 0 {
		res.Model = DefaultConfig()
		res.Warnings = append(res.Warnings, "no server block found")
		return res
	}
	if len(mains) > 1 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("found %d server blocks; only the first was imported", len(mains)))
	}

	model := importBaseModel()
	imp.model = model

	if len(upstreams) > 1 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("found %d upstream blocks; only the first was imported", len(upstreams)))
	}
	if len(upstreams) > 0 {
		imp.importUpstream(upstreams[0])
	}

	imp.importServer(mains[0])

	if redirectSeen {
		model.SSL.HTTPRedirect = true
	}

	res.Model = model
	return res
}

// importBaseModel is the zero-state the importer fills in: every flag off so
// that directives absent from the input stay absent from regenerated output,
// with only the enum-typed fields pre-set to their documented defaults.
func importBaseModel() *ServerConfig {
	return &ServerConfig{
		ListenPort: 80,
		SSL: SSLConfig{
			CipherPreset: CipherIntermediate,
		},
		Performance: PerformanceConfig{
			ClientMaxBodyUnit: UnitMB,
		},
		Logging: LoggingConfig{
			ErrorLogLevel: LogLevelWarn,
		},
		Upstream: UpstreamConfig{
			Name:   "backend",
			Method: BalanceRoundRobin,
		},
	}
}

type importer struct {
	res          *ImportResult
	model        *ServerConfig
	zones        []*Node
	locationSeen bool
}

func (imp *importer) warnf(format string, args ...interface{}) {
	imp.res.Warnings = append(imp.res.Warnings, fmt.Sprintf(format, args...))
}

// collect gathers server and upstream blocks from the top level, descending
// one level into an http wrapper block if present. File-scope rate-limit
// zones are folded into the model-independent state on the importer and
// applied later.
func (imp *importer) collect(tree *Tree) (servers, upstreams []*Node) {
	var scan func(nodes []*Node, depth int)
	scan = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			switch {
			case n.Kind == BlockNode && n.Name == "server":
				servers = append(servers, n)
			case n.Kind == BlockNode && n.Name == "upstream":
				upstreams = append(upstreams, n)
			case n.Kind == BlockNode && n.Name == "http" && depth == 0:
				scan(n.Children, depth+1)
			case n.Kind == DirectiveNode && n.Name == "limit_req_zone":
				imp.zones = append(imp.zones, n)
			}
		}
	}
	scan(tree.Children, 0)
	return servers, upstreams
}

func (imp *importer) importUpstream(block *Node) {
	u := &imp.model.Upstream
	u.Enabled = true
	if len(block.Args) > 0 {
		u.Name = block.Args[0]
	}
	for _, child := range block.Children {
		if child.Kind == BlockNode {
			imp.warnf("unsupported block '%s' at line %d inside upstream", child.Name, child.Line)
			continue
		}
		switch child.Name {
		case "least_conn":
			u.Method = BalanceLeastConn
		case "ip_hash":
			u.Method = BalanceIPHash
		case "random":
			u.Method = BalanceRandom
		case "server":
			if len(child.Args) == 0 {
				continue
			}
			s := UpstreamServer{Address: child.Args[0], Weight: 1}
			for _, p := range child.Args[1:] {
				switch {
				case strings.HasPrefix(p, "weight="):
					s.Weight = atoiDefault(strings.TrimPrefix(p, "weight="), 1)
				case strings.HasPrefix(p, "max_fails="):
					s.MaxFails = atoiDefault(strings.TrimPrefix(p, "max_fails="), 0)
				case strings.HasPrefix(p, "fail_timeout="):
					v := strings.TrimSuffix(strings.TrimPrefix(p, "fail_timeout="), "s")
					s.FailTimeout = atoiDefault(v, 0)
				}
			}
			u.Servers = append(u.Servers, s)
		default:
			imp.warnf("dropped directive '%s' at line %d inside upstream", child.Name, child.Line)
		}
	}
}

func (imp *importer) importServer(block *Node) {
	m := imp.model

	for _, zone := range imp.zones {
		m.Security.RateLimit = true
		for _, a := range zone.Args {
			if strings.HasPrefix(a, "rate=") {
				v := strings.TrimSuffix(strings.TrimPrefix(a, "rate="), "r/s")
				m.Security.RateLimitRPS = atoiDefault(v, 0)
			}
		}
	}

	// Leaf directives are mapped before any location block, regardless of
	// source order. Once a location has been imported there is no
	// well-defined slot left for an unrecognized server directive, and
	// generated output places the preserved bucket after the locations.
	for _, child := range block.Children {
		if child.Kind == BlockNode {
			continue
		}
		imp.importServerDirective(child)
	}
	for _, child := range block.Children {
		if child.Kind != BlockNode {
			continue
		}
		if child.Name == "location" {
			imp.importLocation(child)
			imp.locationSeen = true
		} else {
			imp.warnf("unsupported block '%s' at line %d", child.Name, child.Line)
		}
	}
}

func (imp *importer) importServerDirective(d *Node) {
	m := imp.model
	arg := func(i int) string {
		if i < len(d.Args) {
			return d.Args[i]
		}
		return ""
	}

	switch d.Name {
	case "listen":
		imp.importListen(d.Args)
	case "server_name":
		m.ServerNames = append([]string(nil), d.Args...)
	case "root":
		m.Root = arg(0)
	case "index":
		m.Index = append([]string(nil), d.Args...)

	case "ssl_certificate":
		m.SSL.Enabled = true
		m.SSL.CertificatePath = arg(0)
	case "ssl_certificate_key":
		m.SSL.Enabled = true
		m.SSL.CertificateKeyPath = arg(0)
	case "ssl_protocols":
		m.SSL.Protocols = append([]string(nil), d.Args...)
	case "ssl_ciphers":
		m.SSL.CipherPreset = matchCipherPreset(arg(0))
	case "ssl_prefer_server_ciphers", "ssl_session_cache", "ssl_session_timeout",
		"ssl_session_tickets", "ssl_stapling_verify":
		// Derived from the cipher preset on generation.
	case "ssl_stapling":
		if arg(0) == "on" {
			m.SSL.OCSPStapling = true
		}

	case "add_header":
		name := arg(0)
		switch {
		case strings.EqualFold(name, "Strict-Transport-Security"):
			m.SSL.HSTS = true
		case isSecurityHeader(name):
			m.Security.SecurityHeaders = true
		default:
			imp.preserveOrDrop(d)
		}

	case "server_tokens":
		if arg(0) == "off" {
			m.Security.HideVersion = true
		}
	case "allow":
		m.Security.AllowIPs = append(m.Security.AllowIPs, arg(0))
	case "deny":
		m.Security.DenyIPs = append(m.Security.DenyIPs, arg(0))
	case "auth_basic":
		if arg(0) == "off" {
			m.Security.BasicAuth = false
		} else {
			m.Security.BasicAuth = true
			m.Security.BasicAuthRealm = arg(0)
		}
	case "auth_basic_user_file":
		m.Security.BasicAuthUserFile = arg(0)
	case "limit_req":
		m.Security.RateLimit = true
		for _, a := range d.Args {
			if strings.HasPrefix(a, "burst=") {
				m.Security.RateLimitBurst = atoiDefault(strings.TrimPrefix(a, "burst="), 0)
			}
		}

	case "gzip":
		m.Performance.Gzip = arg(0) == "on"
	case "gzip_types":
		m.Performance.GzipTypes = append([]string(nil), d.Args...)
	case "gzip_vary", "brotli_types":
		// Derived from the gzip settings on generation.
	case "brotli":
		m.Performance.Brotli = arg(0) == "on"
	case "client_max_body_size":
		size, unit := parseBodySize(arg(0))
		m.Performance.ClientMaxBodySize = size
		m.Performance.ClientMaxBodyUnit = unit
	case "keepalive_timeout":
		m.Performance.KeepaliveTimeout = atoiDefault(strings.TrimSuffix(arg(0), "s"), 0)
	case "http2":
		if arg(0) == "on" {
			m.Performance.HTTP2 = true
		}

	case "access_log":
		if arg(0) == "off" {
			m.Logging.AccessLog = false
		} else {
			m.Logging.AccessLog = true
			m.Logging.AccessLogPath = arg(0)
		}
	case "error_log":
		m.Logging.ErrorLog = true
		m.Logging.ErrorLogPath = arg(0)
		switch LogLevel(arg(1)) {
		case LogLevelWarn, LogLevelError, LogLevelCrit:
			m.Logging.ErrorLogLevel = LogLevel(arg(1))
		}

	default:
		imp.preserveOrDrop(d)
	}
}

// preserveOrDrop keeps an unrecognized server-scope directive verbatim in
// the opaque bucket, but only while no location has been imported yet; after
// that there is no well-defined slot left, so it is dropped with a warning.
func (imp *importer) preserveOrDrop(d *Node) {
	if !imp.locationSeen {
		imp.model.CustomDirectives = append(imp.model.CustomDirectives, rawDirective(d))
		return
	}
	imp.warnf("dropped unrecognized directive '%s' at line %d", d.Name, d.Line)
}

func (imp *importer) importListen(args []string) {
	m := imp.model
	for _, a := range args {
		switch a {
		case "ssl":
			m.SSL.Enabled = true
		case "http2":
			m.Performance.HTTP2 = true
		}
	}
	if len(args) == 0 {
		return
	}
	addr := args[0]
	if strings.HasPrefix(addr, "[::]") {
		m.IPv6 = true
	}
	if idx := strings.LastIndex(addr, ":"); idx >= 0 {
		addr = addr[idx+1:]
	}
	if port, err := strconv.Atoi(addr); err == nil && port > 0 {
		m.ListenPort = port
	}
}

func (imp *importer) importLocation(block *Node) {
	m := imp.model
	loc := LocationConfig{Match: MatchPrefix, Type: LocationStatic}

	args := block.Args
	switch {
	case len(args) >= 2 && args[0] == "=":
		loc.Match = MatchExact
		loc.Path = args[1]
	case len(args) >= 2 && args[0] == "~":
		loc.Match = MatchRegex
		loc.Path = args[1]
	case len(args) >= 2 && args[0] == "~*":
		loc.Match = MatchRegexInsensitive
		loc.Path = args[1]
	case len(args) >= 1:
		loc.Path = args[0]
	}

	for _, child := range block.Children {
		if child.Kind == BlockNode {
			imp.warnf("unsupported block '%s' at line %d inside location '%s'", child.Name, child.Line, loc.Path)
			continue
		}
		arg := func(i int) string {
			if i < len(child.Args) {
				return child.Args[i]
			}
			return ""
		}
		switch child.Name {
		case "proxy_pass":
			loc.Type = LocationProxy
			loc.ProxyPass = arg(0)
			m.Proxy.Enabled = true
			if m.Proxy.BackendAddress == "" {
				m.Proxy.BackendAddress = arg(0)
			}
		case "proxy_http_version", "proxy_read_timeout", "proxy_send_timeout", "proxy_buffering":
			// Derived from the websocket flag on generation.
		case "proxy_set_header":
			name, value := arg(0), strings.Join(child.Args[1:], " ")
			switch {
			case strings.EqualFold(name, "Upgrade") && value == "$http_upgrade":
				loc.Websocket = true
				m.Proxy.Websocket = true
			case strings.EqualFold(name, "Connection"):
				// Companion of the Upgrade header.
			case isRealIPHeader(name):
				m.Proxy.ForwardRealIP = true
			default:
				loc.Headers = append(loc.Headers, HeaderPair{Name: name, Value: value})
			}
		case "return":
			code := atoiDefault(arg(0), 0)
			if code == 301 || code == 302 {
				loc.Type = LocationRedirect
				loc.RedirectCode = code
				loc.RedirectTarget = arg(1)
			} else {
				imp.warnf("unsupported return code '%s' at line %d", arg(0), child.Line)
			}
		case "root":
			loc.Root = arg(0)
		case "try_files":
			loc.TryFiles = strings.Join(child.Args, " ")
		case "index":
			loc.Index = strings.Join(child.Args, " ")
		case "autoindex":
			loc.Autoindex = arg(0) == "on"
		case "expires":
			loc.CacheExpiry = arg(0)
		default:
			imp.warnf("dropped directive '%s' at line %d inside location '%s'", child.Name, child.Line, loc.Path)
		}
	}

	// A generated static-caching catch-all folds back into the flag that
	// produced it instead of becoming an explicit location.
	if loc.Match == MatchRegexInsensitive && loc.Type == LocationStatic &&
		isAssetClassPattern(loc.Path) && onlyCacheExpirySet(&loc) {
		m.Performance.StaticCaching = true
		if loc.CacheExpiry != "" {
			m.Performance.CacheDuration = loc.CacheExpiry
		}
		return
	}

	m.Locations = append(m.Locations, loc)
}

func onlyCacheExpirySet(loc *LocationConfig) bool {
	return loc.CacheExpiry != "" && loc.Root == "" && loc.TryFiles == "" &&
		loc.Index == "" && !loc.Autoindex
}

// isRedirectCompanion recognizes the plain-HTTP block the generator emits
// alongside an HTTPS server: a bare 301 to https with no locations.
func isRedirectCompanion(block *Node) bool {
	if len(block.ChildBlocks("location")) > 0 {
		return false
	}
	ret := block.Child("return")
	if ret == nil || len(ret.Args) < 2 {
		return false
	}
	return ret.Args[0] == "301" && strings.HasPrefix(ret.Args[1], "https://")
}

func rawDirective(d *Node) string {
	parts := []string{d.Name}
	for _, a := range d.Args {
		if strings.ContainsAny(a, " \t") {
			a = `"` + a + `"`
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ") + ";"
}

func parseBodySize(value string) (int, BodySizeUnit) {
	if value == "" {
		return 0, UnitMB
	}
	unit := UnitMB
	last := value[len(value)-1]
	switch last {
	case 'g', 'G':
		unit = UnitGB
		value = value[:len(value)-1]
	case 'm', 'M', 'k', 'K':
		value = value[:len(value)-1]
	}
	return atoiDefault(value, 0), unit
}

func atoiDefault(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
