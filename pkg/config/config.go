package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/zan8in/fileutil"
	"gopkg.in/yaml.v2"
)

// Config is the moongazing-config.yaml file.
type Config struct {
	ConfigVersion string  `yaml:"version"`
	API           API     `yaml:"api"`
	Log           Log     `yaml:"log"`
	Cache         Cache   `yaml:"cache"`
	Webhook       Webhook `yaml:"webhook"`
	Export        Export  `yaml:"export"`
	Gateway       Gateway `yaml:"gateway"`

	path string
}

type API struct {
	BaseURL   string `yaml:"base_url"`
	Timeout   string `yaml:"timeout"`
	Proxy     string `yaml:"proxy"`
	TokenFile string `yaml:"token_file"`
}

type Log struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

type Cache struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type Webhook struct {
	Dingtalk Dingtalk `yaml:"dingtalk"`
	Wecom    Wecom    `yaml:"wecom"`
}

type Dingtalk struct {
	Tokens    []string `yaml:"tokens"`
	AtMobiles []string `yaml:"at_mobiles"`
	AtAll     bool     `yaml:"at_all"`
	Range     string   `yaml:"range"`
}

type Wecom struct {
	Tokens    []string `yaml:"tokens"`
	AtMobiles []string `yaml:"at_mobiles"`
	AtAll     bool     `yaml:"at_all"`
	Range     string   `yaml:"range"`
	Markdown  bool     `yaml:"markdown"`
}

type Export struct {
	Minio Minio `yaml:"minio"`
}

type Minio struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type Gateway struct {
	Listen string `yaml:"listen"`
}

const (
	moongazingConfigFilename = "moongazing-config.yaml"

	EnvBaseURL = "MOONGAZING_API_BASE_URL"
	EnvToken   = "MOONGAZING_TOKEN"
)

// Default returns the configuration written on first run.
func Default() *Config {
	c := &Config{ConfigVersion: Version}
	c.API.BaseURL = DefaultBaseURL
	c.API.Timeout = DefaultTimeout
	c.API.TokenFile = filepath.Join(configDir(), "token")
	c.Log.Level = "info"
	c.Cache.Driver = DefaultCacheDriver
	c.Cache.DSN = filepath.Join(configDir(), "moongazing.db")
	c.Webhook.Dingtalk.Tokens = []string{""}
	c.Webhook.Dingtalk.AtMobiles = []string{""}
	c.Webhook.Dingtalk.Range = DefaultAlertRange
	c.Webhook.Wecom.Tokens = []string{""}
	c.Webhook.Wecom.AtMobiles = []string{""}
	c.Webhook.Wecom.Range = DefaultAlertRange
	c.Webhook.Wecom.Markdown = true
	c.Export.Minio.Bucket = "moongazing"
	c.Gateway.Listen = DefaultListen
	return c
}

func configDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".config", "moongazing")
}

// DefaultPath is ~/.config/moongazing/moongazing-config.yaml.
func DefaultPath() string {
	return filepath.Join(configDir(), moongazingConfigFilename)
}

// New reads the configuration at path, or the default path when empty,
// creating it with defaults first if it does not exist. Environment
// overrides are applied after reading and never written back.
func New(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	if !fileutil.FileExists(path) {
		c := Default()
		c.path = path
		if err := WriteConfiguration(c); err != nil {
			return nil, err
		}
	}
	c, err := ReadConfiguration(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()
	return c, nil
}

func (c *Config) GetConfigPath() string {
	return c.path
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		c.API.BaseURL = v
	}
}

// Token returns MOONGAZING_TOKEN when set. It takes precedence over the
// token file.
func Token() string {
	return strings.TrimSpace(os.Getenv(EnvToken))
}

// RequestTimeout parses api.timeout; a blank or invalid value gives the
// default.
func (c *Config) RequestTimeout() time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(c.API.Timeout)); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultTimeout)
	return d
}

// ReadConfiguration reads the configuration file from disk.
func ReadConfiguration(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := Default()
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, errors.Wrapf(err, "could not decode %s", path)
	}
	config.path = path
	return config, nil
}

// WriteConfiguration writes the configuration to its path.
func WriteConfiguration(config *Config) error {
	if config.path == "" {
		config.path = DefaultPath()
	}
	configYAML, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(config.path), 0755); err != nil {
		return errors.Wrap(err, "could not create config directory")
	}
	return os.WriteFile(config.path, configYAML, 0600)
}
