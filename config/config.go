package config

import (
	"fmt"
	validator "github.com/asaskevich/govalidator"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"os"
)

const (
	defaultLogLevel       = "INFO"
	defaultTimeoutSeconds = 60
)

type Config struct {
	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL"`
	} `yaml:"log"`

	Sentinel struct {
		AppID          string `yaml:"app_id" envconfig:"MS_APP_ID" valid:"minstringlength(3)"`
		SecretKey      string `yaml:"secret_key" envconfig:"MS_SECRET_KEY" valid:"minstringlength(3)"`
		TenantID       string `yaml:"tenant_id" envconfig:"MS_TENANT_ID" valid:"minstringlength(3)"`
		SubscriptionID string `yaml:"subscription_id" envconfig:"MS_SUB_ID" valid:"minstringlength(3)"`
		ResourceGroup  string `yaml:"resource_group" envconfig:"MS_RES_GROUP" valid:"minstringlength(3)"`
		WorkspaceName  string `yaml:"workspace_name" envconfig:"MS_WS_NAME" valid:"minstringlength(3)"`
		TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"MS_TIMEOUT_SECONDS"`
		CacheToken     bool   `yaml:"cache_token" envconfig:"MS_CACHE_TOKEN"`
	} `yaml:"mssentinel"`
}

func (c *Config) Validate() error {
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}

	if c.Sentinel.TimeoutSeconds == 0 {
		c.Sentinel.TimeoutSeconds = defaultTimeoutSeconds
	}

	if valid, err := validator.ValidateStruct(c); !valid || err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}

	return nil
}

func (c *Config) Load(l *logrus.Logger, path string) error {
	if path != "" {
		l.WithField("config", path).Info("loading configuration file")

		configBytes, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load configuration file at '%s': %v", path, err)
		}

		if err = yaml.Unmarshal(configBytes, c); err != nil {
			return fmt.Errorf("failed to parse configuration: %v", err)
		}
	}

	if err := envconfig.Process("SENTINEL", c); err != nil {
		return fmt.Errorf("could not load environment: %v", err)
	}

	return nil
}
