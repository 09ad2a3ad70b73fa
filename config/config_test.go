package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	conf := Config{}
	conf.Sentinel.AppID = "app-id"
	conf.Sentinel.SecretKey = "secret-key"
	conf.Sentinel.TenantID = "tenant-id"
	conf.Sentinel.SubscriptionID = "subscription-id"
	conf.Sentinel.ResourceGroup = "resource-group"
	conf.Sentinel.WorkspaceName = "workspace"
	return conf
}

func TestValidate_Defaults(t *testing.T) {
	conf := validConfig()

	require.NoError(t, conf.Validate())

	assert.Equal(t, defaultLogLevel, conf.Log.Level)
	assert.Equal(t, defaultTimeoutSeconds, conf.Sentinel.TimeoutSeconds)
	assert.False(t, conf.Sentinel.CacheToken)
}

func TestValidate_MissingCredentials(t *testing.T) {
	conf := validConfig()
	conf.Sentinel.SecretKey = ""

	require.Error(t, conf.Validate())
}

func TestValidate_TooShort(t *testing.T) {
	conf := validConfig()
	conf.Sentinel.AppID = "ab"

	require.Error(t, conf.Validate())
}

func TestLoad_YAML(t *testing.T) {
	yamlConfig := `
log:
  level: DEBUG
mssentinel:
  app_id: app-id
  secret_key: secret-key
  tenant_id: tenant-id
  subscription_id: subscription-id
  resource_group: resource-group
  workspace_name: workspace
  timeout_seconds: 30
  cache_token: true
`

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlConfig), 0o600))

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	conf := Config{}
	require.NoError(t, conf.Load(logger, path))
	require.NoError(t, conf.Validate())

	assert.Equal(t, "DEBUG", conf.Log.Level)
	assert.Equal(t, "app-id", conf.Sentinel.AppID)
	assert.Equal(t, "workspace", conf.Sentinel.WorkspaceName)
	assert.Equal(t, 30, conf.Sentinel.TimeoutSeconds)
	assert.True(t, conf.Sentinel.CacheToken)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MS_APP_ID", "env-app-id")
	t.Setenv("MS_SECRET_KEY", "env-secret")

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	conf := Config{}
	require.NoError(t, conf.Load(logger, ""))

	assert.Equal(t, "env-app-id", conf.Sentinel.AppID)
	assert.Equal(t, "env-secret", conf.Sentinel.SecretKey)
}

func TestLoad_MissingFile(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	conf := Config{}
	require.Error(t, conf.Load(logger, "/does/not/exist.yml"))
}
