package subscription

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configPayload = `{
  "version": "4.5.0",
  "license_info": {
    "compliant": false,
    "automated_instances": 12,
    "automated_since": 1648571266,
    "current_instances": 40,
    "free_instances": 0,
    "deleted_instances": 3,
    "reactivated_instances": 1,
    "instance_count": 9999999,
    "available_instances": 9999999,
    "license_type": "enterprise",
    "subscription_name": "Ansible Automation Platform",
    "trial": true,
    "license_date": 1648571266,
    "time_remaining": 90000
  }
}`

func newControllerServer(t *testing.T, settingsStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(configPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(configPayload))
	})
	mux.HandleFunc(mePath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":1,"results":[{"username":"admin","is_superuser":true}]}`))
	})
	mux.HandleFunc(settingsPath, func(w http.ResponseWriter, r *http.Request) {
		if settingsStatus != http.StatusOK {
			w.WriteHeader(settingsStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"SUBSCRIPTION_USAGE_MODEL":"unique_managed_hosts"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPProviderSnapshot(t *testing.T) {
	srv := newControllerServer(t, http.StatusOK)
	p := NewHTTPProvider(HTTPOptions{BaseURL: srv.URL + "/", Token: "s3cret", Timeout: 5 * time.Second})

	snap, err := p.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "4.5.0", snap.Version)
	assert.Equal(t, "admin", snap.User.Username)
	assert.True(t, snap.User.IsSuperuser)
	assert.True(t, snap.UsesUniqueManagedHosts())

	li := snap.LicenseInfo
	assert.False(t, li.Compliant)
	require.NotNil(t, li.AutomatedInstances)
	assert.Equal(t, 12, *li.AutomatedInstances)
	require.NotNil(t, li.LicenseDate)
	assert.Equal(t, int64(1648571266), *li.LicenseDate)
	assert.True(t, li.Unlimited())
	assert.True(t, li.Trial)
}

func TestHTTPProviderSettingsForbidden(t *testing.T) {
	srv := newControllerServer(t, http.StatusForbidden)
	p := NewHTTPProvider(HTTPOptions{BaseURL: srv.URL, Token: "s3cret"})

	snap, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.SystemConfig.SubscriptionUsageModel)
	assert.False(t, snap.UsesUniqueManagedHosts())
}

func TestHTTPProviderUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	p := NewHTTPProvider(HTTPOptions{BaseURL: srv.URL, Username: "admin", Password: "nope"})
	_, err := p.Snapshot(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), configPath)
}

func TestHTTPProviderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	p := NewHTTPProvider(HTTPOptions{BaseURL: srv.URL})
	_, err := p.Snapshot(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestFileProviderJSONAndYAML(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "snap.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
  "me": {"is_superuser": true},
  "version": "4.4.1",
  "system_config": {"SUBSCRIPTION_USAGE_MODEL": "unique_managed_hosts"},
  "license_info": {"instance_count": 10, "available_instances": 5, "time_remaining": 86400}
}`), 0o644))

	yamlPath := filepath.Join(dir, "snap.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
me:
  is_superuser: true
version: 4.4.1
system_config:
  SUBSCRIPTION_USAGE_MODEL: unique_managed_hosts
license_info:
  instance_count: 10
  available_instances: 5
  time_remaining: 86400
`), 0o644))

	for _, path := range []string{jsonPath, yamlPath} {
		snap, err := NewFileProvider(path).Snapshot(context.Background())
		require.NoError(t, err, path)
		assert.Equal(t, "4.4.1", snap.Version, path)
		assert.True(t, snap.User.IsSuperuser, path)
		assert.True(t, snap.UsesUniqueManagedHosts(), path)
		assert.Equal(t, 5, snap.LicenseInfo.AvailableInstances, path)
		require.NotNil(t, snap.LicenseInfo.TimeRemaining, path)
		assert.Equal(t, int64(86400), *snap.LicenseInfo.TimeRemaining, path)
		assert.Nil(t, snap.LicenseInfo.AutomatedInstances, path)
		assert.Nil(t, snap.LicenseInfo.LicenseDate, path)
	}
}

func TestFileProviderMissingFile(t *testing.T) {
	_, err := NewFileProvider(filepath.Join(t.TempDir(), "nope.json")).Snapshot(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStaticProviderReturnsCopies(t *testing.T) {
	p := NewStaticProvider(Snapshot{Version: "1.0"})
	first, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	first.Version = "changed"

	second, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.0", second.Version)
}

func TestStaticProviderHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStaticProvider(Snapshot{}).Snapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type countingProvider struct {
	calls atomic.Int32
}

func (c *countingProvider) Snapshot(context.Context) (*Snapshot, error) {
	n := c.calls.Add(1)
	return &Snapshot{Version: string(rune('0' + n))}, nil
}

func TestCachedProvider(t *testing.T) {
	next := &countingProvider{}
	p := NewCachedProvider(next, time.Minute)

	a, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	b, err := p.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, a.Version, b.Version)

	p.Invalidate()
	c, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
	assert.NotEqual(t, a.Version, c.Version)
}

func TestCachedProviderDisabled(t *testing.T) {
	next := &countingProvider{}
	p := NewCachedProvider(next, 0)

	_, _ = p.Snapshot(context.Background())
	_, _ = p.Snapshot(context.Background())
	p.Invalidate()
	assert.Equal(t, int32(2), next.calls.Load())
}

func useCacheDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig := cacheDir
	cacheDir = func() (string, error) { return dir, nil }
	t.Cleanup(func() { cacheDir = orig })
	return dir
}

const controllerA = "https://controller-a.example.com"

func TestSaveAndLoadLast(t *testing.T) {
	dir := useCacheDir(t)

	_, err := LoadLast(controllerA)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	snap := &Snapshot{
		Version:     "4.5.0",
		LicenseInfo: LicenseInfo{LicenseDate: Int64(42), InstanceCount: 10},
	}
	require.NoError(t, SaveLast(controllerA, snap))

	loaded, err := LoadLast(controllerA + "/")
	require.NoError(t, err)
	assert.Equal(t, snap.Version, loaded.Version)
	require.NotNil(t, loaded.LicenseInfo.LicenseDate)
	assert.Equal(t, int64(42), *loaded.LicenseInfo.LicenseDate)
	assert.Nil(t, loaded.LicenseInfo.TimeRemaining)

	raw, err := os.ReadFile(filepath.Join(dir, cacheFileName(controllerA)))
	require.NoError(t, err)
	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &generic))
	assert.Contains(t, generic, "license_info")
}

func TestLoadLastIsPerController(t *testing.T) {
	useCacheDir(t)

	require.NoError(t, SaveLast(controllerA, &Snapshot{
		Version:     "controller-A-4.5",
		LicenseInfo: LicenseInfo{SubscriptionName: "A subscription"},
	}))

	_, err := LoadLast("https://controller-b.example.com")
	assert.ErrorIs(t, err, ErrNoSnapshot)

	loaded, err := LoadLast(controllerA)
	require.NoError(t, err)
	assert.Equal(t, "A subscription", loaded.LicenseInfo.SubscriptionName)
	assert.NotEqual(t, cacheFileName(controllerA), cacheFileName("https://controller-b.example.com"))
}

func TestHTTPProviderRejectsNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html>login</html>"))
	}))
	t.Cleanup(srv.Close)

	snap, err := NewHTTPProvider(HTTPOptions{BaseURL: srv.URL, Token: "s3cret"}).Snapshot(context.Background())
	require.Error(t, err)
	assert.Nil(t, snap)
	assert.Contains(t, err.Error(), "unexpected content type")
	assert.Contains(t, err.Error(), configPath)
}

func TestIsJSON(t *testing.T) {
	assert.True(t, isJSON("application/json"))
	assert.True(t, isJSON("application/json; charset=utf-8"))
	assert.True(t, isJSON("application/problem+json"))
	assert.False(t, isJSON("text/html; charset=utf-8"))
	assert.False(t, isJSON(""))
}
