package birdie

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_UnsupportedVersion(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()
	u, _ := url.Parse(srv.URL)

	c, err := Connect("v2", Credentials{Username: "u", Password: "p"}, Endpoint{Host: u.Hostname(), Port: u.Port()})
	assert.Nil(t, c)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
	assert.Contains(t, err.Error(), `invalid client version "v2", must be one of: v1`)
	assert.Equal(t, int32(0), calls.Load())
}

func TestConnect_V1(t *testing.T) {
	var path, token, project string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		token = r.Header.Get(headerAuthToken)
		project = r.Header.Get(headerProjectID)
		writeJSON(w, http.StatusOK, map[string]any{"resource": map[string]any{"id": "s1"}})
	}))
	defer srv.Close()
	u, _ := url.Parse(srv.URL)

	c, err := Connect("v1", Credentials{
		Username:  "admin",
		Password:  "pw",
		ProjectID: "proj",
		TenantID:  "tenant",
		AuthToken: "tok",
	}, Endpoint{Host: u.Hostname(), Port: u.Port()}, WithRetries(0))
	require.NoError(t, err)
	require.NotNil(t, c.VServices)
	assert.Equal(t, V1, c.Version)
	assert.Same(t, c.Session, c.VServices.Session())

	cfg := c.Session.Config()
	assert.Equal(t, "admin", cfg.Username)
	assert.Equal(t, "tenant", cfg.TenantID)
	assert.Equal(t, 0, cfg.MaxRetries)

	got, err := c.VServices.GetService(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got["id"])
	assert.Equal(t, "/v1/services/s1", path)
	assert.Equal(t, "tok", token)
	assert.Equal(t, "proj", project)

	require.NoError(t, c.Authenticate(context.Background()))
	assert.Equal(t, srv.URL, c.Session.ManagementURL())
}

func TestEndpoint_URL(t *testing.T) {
	cases := []struct {
		ep   Endpoint
		want string
	}{
		{Endpoint{Host: "gw.local", Port: "8080"}, "http://gw.local:8080"},
		{Endpoint{Scheme: "https", Host: "gw.local", Port: "443"}, "https://gw.local:443"},
		{Endpoint{Host: "::1", Port: "80"}, "http://[::1]:80"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.ep.URL())
	}
}

func TestSupportedVersions(t *testing.T) {
	assert.Equal(t, []string{"v1"}, SupportedVersions())
}
