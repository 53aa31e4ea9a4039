package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is picked up from the working directory when no --config is given.
const DefaultFile = "qakit.yaml"

// Config holds the settings of both tools
type Config struct {
	Contract ContractConfig `yaml:"contract"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ContractConfig configures the contract checker run
type ContractConfig struct {
	BaseURL        string        `yaml:"base_url"`
	SpecPath       string        `yaml:"spec_path"`
	HealthPath     string        `yaml:"health_path"`
	LoginPath      string        `yaml:"login_path"`
	RegisterPath   string        `yaml:"register_path"`
	AuthSegment    string        `yaml:"auth_segment"`
	HealthTimeout  time.Duration `yaml:"health_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	User           User          `yaml:"user"`
}

// User is the account used for the login/register exchange
type User struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// MetricsConfig configures the test-matrix analyzer
type MetricsConfig struct {
	CSVPath     string `yaml:"csv_path"`
	ReportDir   string `yaml:"report_dir"`
	ProjectName string `yaml:"project_name"`
}

// Default returns the configuration both tools run with when nothing else is set.
func Default() *Config {
	return &Config{
		Contract: ContractConfig{
			BaseURL:       "http://localhost:3001/api",
			SpecPath:      "./openapi.yaml",
			HealthPath:    "/health",
			LoginPath:     "/auth/login",
			RegisterPath:  "/auth/register",
			AuthSegment:   "/auth/",
			HealthTimeout: 5 * time.Second,
			User: User{
				Email:    "test@example.com",
				Password: "testpassword123",
				Name:     "Test User",
			},
		},
		Metrics: MetricsConfig{
			CSVPath:     "test-matrix.csv",
			ReportDir:   ".",
			ProjectName: "FLAT EXPENSE MANAGEMENT SYSTEM",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// QAKIT_* environment variables, in that order of precedence. An explicit
// path must exist; the implicit DefaultFile is optional.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no config file, defaults apply
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Contract.BaseURL, "BASE_URL")
	setString(&c.Contract.SpecPath, "SPEC_PATH")
	setString(&c.Contract.User.Email, "AUTH_EMAIL")
	setString(&c.Contract.User.Password, "AUTH_PASSWORD")
	setString(&c.Contract.User.Name, "AUTH_NAME")
	setDuration(&c.Contract.HealthTimeout, "HEALTH_TIMEOUT")
	setDuration(&c.Contract.RequestTimeout, "REQUEST_TIMEOUT")

	setString(&c.Metrics.CSVPath, "CSV_PATH")
	setString(&c.Metrics.ReportDir, "REPORT_DIR")
	setString(&c.Metrics.ProjectName, "PROJECT_NAME")
}

// Validate rejects contract settings no run could succeed with
func (c ContractConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("contract.base_url cannot be empty")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("contract.base_url must start with http:// or https://, got: %s", c.BaseURL)
	}
	if c.HealthTimeout <= 0 {
		return fmt.Errorf("contract.health_timeout must be positive")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("contract.request_timeout cannot be negative")
	}
	return nil
}

// Validate rejects metrics settings no run could succeed with
func (c MetricsConfig) Validate() error {
	if strings.TrimSpace(c.CSVPath) == "" {
		return fmt.Errorf("metrics.csv_path cannot be empty")
	}
	return nil
}

// GetEnvVarName returns the environment variable name for a config key
func GetEnvVarName(key string) string {
	return "QAKIT_" + strings.ToUpper(key)
}

// GetEnv retrieves an environment variable with the QAKIT_ prefix
func GetEnv(key string) string {
	return os.Getenv(GetEnvVarName(key))
}

func setString(dst *string, key string) {
	if v := GetEnv(key); v != "" {
		*dst = v
	}
}

// setDuration accepts plain integers as seconds or Go duration strings.
// Unparseable values are ignored.
func setDuration(dst *time.Duration, key string) {
	v := GetEnv(key)
	if v == "" {
		return
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}
