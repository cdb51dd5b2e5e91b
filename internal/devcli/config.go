package devcli

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key looked up in the
// environment, e.g. BIRDIE_HOST.
const EnvPrefix = "BIRDIE"

// Configuration keys. Each maps to BIRDIE_<KEY> in the environment and to the
// same key in the optional YAML config file.
const (
	KeyScheme     = "scheme"
	KeyHost       = "host"
	KeyPort       = "port"
	KeyUsername   = "username"
	KeyPassword   = "password"
	KeyProjectID  = "project_id"
	KeyTenantID   = "tenant_id"
	KeyInsecure   = "insecure"
	KeyCACert     = "cacert"
	KeyTimeout    = "timeout"    // seconds
	KeyRetries    = "retries"    // int
	KeyBackoffMs  = "backoff_ms" // ms
	KeyAPIVersion = "api_version"
	KeyLogLevel   = "log_level"
)

// Built-in defaults, lowest precedence.
const (
	DefaultScheme     = "http"
	DefaultHost       = "localhost"
	DefaultPort       = "8090"
	DefaultTimeoutSec = 60
	DefaultRetries    = 3
	DefaultBackoffMs  = 1000
	DefaultAPIVersion = "v1"
	DefaultLogLevel   = "info"
)

// flagKeys maps global flag names to configuration keys.
var flagKeys = map[string]string{
	"scheme":      KeyScheme,
	"host":        KeyHost,
	"port":        KeyPort,
	"username":    KeyUsername,
	"password":    KeyPassword,
	"project":     KeyProjectID,
	"tenant":      KeyTenantID,
	"insecure":    KeyInsecure,
	"cacert":      KeyCACert,
	"timeout":     KeyTimeout,
	"retries":     KeyRetries,
	"backoff-ms":  KeyBackoffMs,
	"api-version": KeyAPIVersion,
}

// GlobalFlags captures CLI-wide settings after flags, environment, config
// file and defaults have been merged in that order of precedence.
type GlobalFlags struct {
	ConfigFile string

	Scheme string
	Host   string
	Port   string

	Username  string
	Password  string
	ProjectID string
	TenantID  string

	Insecure bool
	CACert   string

	Timeout    time.Duration
	Retries    int
	Backoff    time.Duration
	APIVersion string
	LogLevel   string
	Verbose    bool
}

// NewViper returns a viper instance with defaults and environment lookup
// configured. A non-empty path is read as a YAML config file.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyScheme, DefaultScheme)
	v.SetDefault(KeyHost, DefaultHost)
	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyTimeout, DefaultTimeoutSec)
	v.SetDefault(KeyRetries, DefaultRetries)
	v.SetDefault(KeyBackoffMs, DefaultBackoffMs)
	v.SetDefault(KeyAPIVersion, DefaultAPIVersion)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	for _, k := range []string{KeyUsername, KeyPassword, KeyProjectID, KeyTenantID, KeyCACert} {
		v.SetDefault(k, "")
	}
	v.SetDefault(KeyInsecure, false)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

// ParseGlobalFlagsArgs binds global flags to the provided FlagSet, parses
// args and resolves the remaining settings through viper.
func ParseGlobalFlagsArgs(fs *flag.FlagSet, args []string) (GlobalFlags, error) {
	var g GlobalFlags

	fs.StringVar(&g.ConfigFile, "config", "", "YAML config file")
	fs.String("scheme", DefaultScheme, "API scheme (env BIRDIE_SCHEME)")
	fs.String("host", DefaultHost, "API host (env BIRDIE_HOST)")
	fs.String("port", DefaultPort, "API port (env BIRDIE_PORT)")
	fs.String("username", "", "Username (env BIRDIE_USERNAME)")
	fs.String("password", "", "Password (env BIRDIE_PASSWORD)")
	fs.String("project", "", "Project ID (env BIRDIE_PROJECT_ID)")
	fs.String("tenant", "", "Tenant ID (env BIRDIE_TENANT_ID)")
	fs.Bool("insecure", false, "Skip TLS verification (env BIRDIE_INSECURE)")
	fs.String("cacert", "", "PEM trust anchors (env BIRDIE_CACERT)")
	fs.Int("timeout", DefaultTimeoutSec, "Request timeout seconds (env BIRDIE_TIMEOUT)")
	fs.Int("retries", DefaultRetries, "Max retries on 400/5xx/connection errors (env BIRDIE_RETRIES)")
	fs.Int("backoff-ms", DefaultBackoffMs, "Initial backoff ms (env BIRDIE_BACKOFF_MS)")
	fs.String("api-version", DefaultAPIVersion, "API version (env BIRDIE_API_VERSION)")
	fs.BoolVar(&g.Verbose, "v", false, "Debug logs with request/response trace (secrets redacted)")

	if err := fs.Parse(args); err != nil {
		return g, err
	}

	v, err := NewViper(g.ConfigFile)
	if err != nil {
		return g, err
	}
	// Explicit flags win over env, file and defaults.
	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})
	fromViper(v, &g)
	return g, nil
}

func fromViper(v *viper.Viper, g *GlobalFlags) {
	g.Scheme = v.GetString(KeyScheme)
	g.Host = v.GetString(KeyHost)
	g.Port = v.GetString(KeyPort)
	g.Username = v.GetString(KeyUsername)
	g.Password = v.GetString(KeyPassword)
	g.ProjectID = v.GetString(KeyProjectID)
	g.TenantID = v.GetString(KeyTenantID)
	g.Insecure = v.GetBool(KeyInsecure)
	g.CACert = v.GetString(KeyCACert)
	g.Timeout = time.Duration(v.GetInt(KeyTimeout)) * time.Second
	g.Retries = v.GetInt(KeyRetries)
	g.Backoff = time.Duration(v.GetInt(KeyBackoffMs)) * time.Millisecond
	g.APIVersion = v.GetString(KeyAPIVersion)
	g.LogLevel = v.GetString(KeyLogLevel)
	if g.Verbose {
		g.LogLevel = "debug"
	}
}

// MustNonEmpty enforces required flag presence for better operator feedback.
func MustNonEmpty(val, name string) {
	if strings.TrimSpace(val) == "" {
		// Errors are printed by the command runner for consistent formatting.
		panic("missing required " + name)
	}
}
