package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/neurovision/emotion-pipeline/pipeerr"
)

type Service struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type Speech struct {
	Service      `mapstructure:",squash" yaml:",inline"`
	Model        string        `mapstructure:"model" yaml:"model"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

type Chat struct {
	Service     `mapstructure:",squash" yaml:",inline"`
	Model       string  `mapstructure:"model" yaml:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int64   `mapstructure:"max_tokens" yaml:"max_tokens"`
}

type Services struct {
	Vision Service `mapstructure:"vision" yaml:"vision"`
	Speech Speech  `mapstructure:"speech" yaml:"speech"`
	Chat   Chat    `mapstructure:"chat" yaml:"chat"`
}

type Server struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	MaxUploadMB    int64    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	RatePerMinute  int      `mapstructure:"rate_per_minute" yaml:"rate_per_minute"`
	RateBurst      int      `mapstructure:"rate_burst" yaml:"rate_burst"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	// TrustedProxies may set X-Forwarded-For; requests from anyone else are
	// keyed by their socket address.
	TrustedProxies []string `mapstructure:"trusted_proxies" yaml:"trusted_proxies"`
}

// Secrets are read from the environment by their bare names.
type Secrets struct {
	HuggingFace string `mapstructure:"huggingface_api_key" yaml:"huggingface_api_key"`
	AssemblyAI  string `mapstructure:"assemblyai_api_key" yaml:"assemblyai_api_key"`
	OpenAI      string `mapstructure:"openai_api_key" yaml:"openai_api_key"`
}

type Root struct {
	Pipeline struct {
		Name      string `mapstructure:"name" yaml:"name"`
		Version   string `mapstructure:"version" yaml:"version"`
		LogLvl    string `mapstructure:"log_level" yaml:"log_level"`
		LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	} `mapstructure:"pipeline" yaml:"pipeline"`
	Server   Server   `mapstructure:"server" yaml:"server"`
	Services Services `mapstructure:"services" yaml:"services"`
	Paths    struct {
		Temp    string `mapstructure:"temp" yaml:"temp"`
		Outputs string `mapstructure:"outputs" yaml:"outputs"`
	} `mapstructure:"paths" yaml:"paths"`
	Secrets Secrets `mapstructure:"secrets" yaml:"secrets"`
}

var secretEnv = []struct{ key, env string }{
	{"secrets.huggingface_api_key", "HUGGINGFACE_API_KEY"},
	{"secrets.assemblyai_api_key", "ASSEMBLYAI_API_KEY"},
	{"secrets.openai_api_key", "OPENAI_API_KEY"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.name", "neurovision")
	v.SetDefault("pipeline.version", "1.0.0")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("pipeline.log_format", "text")

	v.SetDefault("server.addr", ":8501")
	v.SetDefault("server.max_upload_mb", 50)
	v.SetDefault("server.rate_per_minute", 10)
	v.SetDefault("server.rate_burst", 3)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.trusted_proxies", []string{"127.0.0.1", "::1"})

	v.SetDefault("services.vision.url", "https://router.huggingface.co/hf-inference/models/trpakov/vit-face-expression")
	v.SetDefault("services.vision.timeout", 60*time.Second)
	v.SetDefault("services.speech.url", "https://api.assemblyai.com")
	v.SetDefault("services.speech.timeout", 120*time.Second)
	v.SetDefault("services.speech.model", "universal")
	v.SetDefault("services.speech.poll_interval", 3*time.Second)
	v.SetDefault("services.chat.url", "https://api.openai.com/v1/")
	v.SetDefault("services.chat.timeout", 120*time.Second)
	v.SetDefault("services.chat.model", "gpt-4o-mini")
	v.SetDefault("services.chat.temperature", 0.7)
	v.SetDefault("services.chat.max_tokens", 800)

	v.SetDefault("paths.temp", os.TempDir())
	v.SetDefault("paths.outputs", "outputs")

	for _, s := range secretEnv {
		v.SetDefault(s.key, "")
	}
}

// Load reads the YAML config at path, or the first file found in the
// per-environment guess list when path is empty, then applies environment
// overrides. Running without any config file is allowed.
func Load(path string) (*Root, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("NEUROVISION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, s := range secretEnv {
		if err := v.BindEnv(s.key, s.env); err != nil {
			return nil, err
		}
	}

	if path == "" {
		path = guessPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func guessPath() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	guess := []string{
		filepath.Join("config", env, "config.yaml"),
		filepath.Join("src", "shared", "config.yaml"),
	}
	for _, p := range guess {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Validate reports every missing secret at once, in declaration order.
func (r *Root) Validate() error {
	var missing []string
	if r.Secrets.HuggingFace == "" {
		missing = append(missing, "HUGGINGFACE_API_KEY")
	}
	if r.Secrets.AssemblyAI == "" {
		missing = append(missing, "ASSEMBLYAI_API_KEY")
	}
	if r.Secrets.OpenAI == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return &pipeerr.MissingConfigError{Names: missing}
	}
	return nil
}

// YAML renders the configuration with secrets masked.
func (r *Root) YAML() ([]byte, error) {
	c := *r
	c.Secrets = Secrets{
		HuggingFace: redact(r.Secrets.HuggingFace),
		AssemblyAI:  redact(r.Secrets.AssemblyAI),
		OpenAI:      redact(r.Secrets.OpenAI),
	}
	return yaml.Marshal(&c)
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
