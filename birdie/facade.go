package birdie

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Version names a gateway API version.
type Version string

// V1 is the only released API version.
const V1 Version = "v1"

// Client is the top-level handle for one API version. Its managers share a
// single Session.
type Client struct {
	Version   Version
	Session   *Session
	VServices *VServiceManager
}

// versions maps each supported API version to its manager set.
var versions = map[Version]func(*Session) *Client{
	V1: newV1Client,
}

func newV1Client(s *Session) *Client {
	base := "/" + string(V1)
	return &Client{
		Version:   V1,
		Session:   s,
		VServices: NewVServiceManager(s, base),
	}
}

// SupportedVersions lists the known API versions in order.
func SupportedVersions() []string {
	out := make([]string, 0, len(versions))
	for v := range versions {
		out = append(out, string(v))
	}
	sort.Strings(out)
	return out
}

// Connect builds a Client for version against ep using creds. An unknown
// version fails with ErrUnsupportedVersion before any session is built.
// Connect performs no network I/O.
func Connect(version string, creds Credentials, ep Endpoint, opts ...Option) (*Client, error) {
	build, ok := versions[Version(version)]
	if !ok {
		msg := fmt.Sprintf("invalid client version %q, must be one of: %s",
			version, strings.Join(SupportedVersions(), ", "))
		return nil, &Error{Kind: KindUnsupportedVersion, Message: msg}
	}
	base := []Option{
		WithEndpoint(ep.URL()),
		WithCredentials(creds.Username, creds.Password),
		WithProjectID(creds.ProjectID),
		WithTenantID(creds.TenantID),
		WithAuthToken(creds.AuthToken),
	}
	s, err := NewSession(append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	return build(s), nil
}

// Authenticate forces the session to refill its management URL and token.
func (c *Client) Authenticate(ctx context.Context) error {
	return c.Session.Authenticate(ctx)
}
