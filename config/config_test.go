package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-manager/config"
	"github.com/warp/leave-manager/generic"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWithEnvSecret(t *testing.T) {
	t.Setenv("LEAVE_AUTH_SECRET", "from-env")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.Secret)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "admin", cfg.Auth.DefaultAdminUsername)
	assert.Equal(t, "local", cfg.Certificates.Backend)
	assert.Equal(t, time.Hour, cfg.Scheduler.SessionPurgeInterval)

	annual, sick, err := cfg.Policies()
	require.NoError(t, err)
	assert.Nil(t, annual.Cap, "uncapped unless configured")
	assert.Equal(t, 1095, sick.CycleDays)
}

func TestLoad_MissingSecret(t *testing.T) {
	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.secret")
}

func TestLoad_YAMLFileWithOverrides(t *testing.T) {
	// GIVEN: A file with the rate table and a cap
	path := writeConfig(t, `
server:
  port: 9090
  cors_origins: ["http://localhost:3000"]
auth:
  secret: file-secret
  session_ttl: 30m
leave:
  annual:
    default_rate: "1.25"
    cap: 30
    rates:
      - employee_id: "8601310127086"
        rate: "20/12"
      - employee_id: EMP-A1
        rate: "1.5"
certificates:
  backend: s3
  s3:
    bucket: certs
    endpoint: http://minio:9000
    use_path_style: true
`)
	// AND: An env override on top
	t.Setenv("LEAVE_SERVER_PORT", "7070")

	// WHEN: Loading
	cfg, err := config.Load(path)
	require.NoError(t, err)

	// THEN: Env beats file, file beats defaults
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 30*time.Minute, cfg.Auth.SessionTTL)
	assert.Equal(t, "certs", cfg.Certificates.S3.Bucket)
	assert.True(t, cfg.Certificates.S3.UsePathStyle)

	annual, _, err := cfg.Policies()
	require.NoError(t, err)
	require.NotNil(t, annual.Cap)
	assert.True(t, annual.Cap.Equal(generic.Days(30)))
	assert.Equal(t, "20/12", annual.RateFor("8601310127086").String())
	assert.Equal(t, "1.5", annual.RateFor("EMP-A1").String())
}

func TestLoad_OverrideEmployeeNumberKeepsCase(t *testing.T) {
	// GIVEN: An override keyed by an alphanumeric employee number
	path := writeConfig(t, `
auth:
  secret: s
leave:
  annual:
    rates:
      - employee_id: EMP-A1
        rate: "20/12"
`)

	// WHEN: Loading and building the policy
	cfg, err := config.Load(path)
	require.NoError(t, err)
	annual, _, err := cfg.Policies()
	require.NoError(t, err)

	// THEN: The exact number gets the override; a case variant does not
	require.Len(t, cfg.Leave.Annual.Rates, 1)
	assert.Equal(t, "EMP-A1", cfg.Leave.Annual.Rates[0].EmployeeID)
	assert.Equal(t, "20/12", annual.RateFor("EMP-A1").String())
	assert.Equal(t, "1.25", annual.RateFor("emp-a1").String())

	hire := generic.NewTimePoint(2023, time.January, 1)
	today := generic.NewTimePoint(2024, time.January, 1)
	res := annual.Balance("EMP-A1", hire, today, generic.ZeroDays())
	assert.True(t, res.Entitlement.Equal(generic.Days(20)), "got %s", res.Entitlement)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad backend", "auth: {secret: s}\ncertificates: {backend: ftp}\n"},
		{"s3 without bucket", "auth: {secret: s}\ncertificates: {backend: s3}\n"},
		{"bad rate", "auth: {secret: s}\nleave: {annual: {default_rate: fast}}\n"},
		{"bad port", "auth: {secret: s}\nserver: {port: 70000}\n"},
		{"zero ttl", "auth: {secret: s, session_ttl: 0s}\n"},
		{"override without employee", "auth: {secret: s}\nleave: {annual: {rates: [{rate: \"2\"}]}}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestServerAddr(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8080", config.ServerConfig{Host: "127.0.0.1", Port: 8080}.Addr())
}
