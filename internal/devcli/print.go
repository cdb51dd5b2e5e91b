package devcli

import (
	"encoding/json"
	"fmt"
	"os"
)

// PrintJSON prints a value as pretty-printed JSON.
func PrintJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

// PrintGlobalUsage renders the top-level usage text.
func PrintGlobalUsage(bin string) {
	fmt.Println(bin + ` - CLI for the Birdie gateway management API

USAGE:
  ` + bin + ` <command> <subcommand> [flags]

GLOBAL FLAGS (env in []; flags override env, env overrides -config file):
  -config        	YAML config file
  -scheme        	API scheme [BIRDIE_SCHEME, default ` + DefaultScheme + `]
  -host          	API host [BIRDIE_HOST, default ` + DefaultHost + `]
  -port          	API port [BIRDIE_PORT, default ` + DefaultPort + `]
  -username      	Username [BIRDIE_USERNAME]
  -password      	Password [BIRDIE_PASSWORD]
  -project       	Project ID [BIRDIE_PROJECT_ID]
  -tenant        	Tenant ID [BIRDIE_TENANT_ID]
  -insecure      	Skip TLS verification [BIRDIE_INSECURE]
  -cacert        	PEM trust anchors [BIRDIE_CACERT]
  -timeout       	Request timeout seconds [BIRDIE_TIMEOUT, default 60]
  -retries       	Retries on 400/5xx/connection errors [BIRDIE_RETRIES, default 3]
  -backoff-ms    	Initial backoff ms [BIRDIE_BACKOFF_MS, default 1000]
  -api-version   	API version [BIRDIE_API_VERSION, default ` + DefaultAPIVersion + `]
  -v             	Debug logs with redacted request/response trace

COMMANDS:
  services list   	[-detail] [-q key=value ...]
  services show   	-id <id>
  services create 	-data '{"name":"edge"}'
  services update 	-id <id> -data '{"name":"edge2"}'
  services delete 	-id <id>

EXAMPLES:
  ` + bin + ` services list -detail -q status=active
  ` + bin + ` services show -id 123 -host gw.internal -port 8090
  BIRDIE_USERNAME=admin ` + bin + ` services create -data '{"name":"edge"}'
`)
}

// Panicf is a small helper for required flag validation in subcommands.
func Panicf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintln(os.Stderr)
	os.Exit(2)
}
