// Package config resolves churnctl settings from an optional YAML file,
// CHURN_* environment variables and built-in defaults.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/model"
)

const (
	EnvPrefix = "CHURN"
	fileMode  = 0600
)

type Config struct {
	Log       LogConfig       `mapstructure:"log" json:"log" yaml:"log"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts" json:"artifacts" yaml:"artifacts"`
	Serve     ServeConfig     `mapstructure:"serve" json:"serve" yaml:"serve"`
	Train     TrainConfig     `mapstructure:"train" json:"train" yaml:"train"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" json:"format" yaml:"format" validate:"oneof=cli json text"`
}

type ArtifactsConfig struct {
	Backend string `mapstructure:"backend" json:"backend" yaml:"backend" validate:"oneof=file sqlite postgres"`
	Dir     string `mapstructure:"dir" json:"dir" yaml:"dir" validate:"required"`
	DSN     string `mapstructure:"dsn" json:"dsn,omitempty" yaml:"dsn,omitempty" validate:"required_if=Backend postgres"`
}

type ServeConfig struct {
	Addr            string        `mapstructure:"addr" json:"addr" yaml:"addr" validate:"required"`
	Watch           bool          `mapstructure:"watch" json:"watch" yaml:"watch"`
	Debounce        time.Duration `mapstructure:"debounce" json:"debounce" yaml:"debounce" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
}

// TrainConfig mirrors the classifier hyperparameters plus the ingest split.
type TrainConfig struct {
	TestRatio           float64 `mapstructure:"test_ratio" json:"test_ratio" yaml:"test_ratio" validate:"gt=0,lt=1"`
	Seed                int64   `mapstructure:"seed" json:"seed" yaml:"seed"`
	NEstimators         int     `mapstructure:"n_estimators" json:"n_estimators" yaml:"n_estimators" validate:"min=1"`
	LearningRate        float64 `mapstructure:"learning_rate" json:"learning_rate" yaml:"learning_rate" validate:"gt=0,lte=1"`
	MaxDepth            int     `mapstructure:"max_depth" json:"max_depth" yaml:"max_depth" validate:"min=1,max=32"`
	Subsample           float64 `mapstructure:"subsample" json:"subsample" yaml:"subsample" validate:"gt=0,lte=1"`
	ColsampleByTree     float64 `mapstructure:"colsample_bytree" json:"colsample_bytree" yaml:"colsample_bytree" validate:"gt=0,lte=1"`
	EarlyStoppingRounds int     `mapstructure:"early_stopping_rounds" json:"early_stopping_rounds" yaml:"early_stopping_rounds" validate:"min=0"`
	MaxBin              int     `mapstructure:"max_bin" json:"max_bin" yaml:"max_bin" validate:"min=2,max=65535"`
}

var defaults = map[string]any{
	"log.level":                   "info",
	"log.format":                  "cli",
	"artifacts.backend":           "file",
	"artifacts.dir":               "artifacts",
	"artifacts.dsn":               "",
	"serve.addr":                  ":8080",
	"serve.watch":                 false,
	"serve.debounce":              "500ms",
	"serve.shutdown_timeout":      "10s",
	"train.test_ratio":            0.2,
	"train.seed":                  42,
	"train.n_estimators":          1000,
	"train.learning_rate":         0.01,
	"train.max_depth":             6,
	"train.subsample":             0.8,
	"train.colsample_bytree":      0.7,
	"train.early_stopping_rounds": 50,
	"train.max_bin":               256,
}

// Load reads the config file at path (skipped when empty), applies
// CHURN_ environment overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file: %s", path)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the configuration used when no file or env override is set.
func Default() *Config {
	c, err := Load("")
	if err != nil {
		// defaults are static; a failure here is a programming error
		panic(err)
	}
	return c
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

// Save writes c as YAML to path.
func Save(path string, c *Config) error {
	if path == "" {
		return errors.New("config path required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", path)
	}
	return nil
}

// ModelOptions converts the train section into classifier options.
func (c *Config) ModelOptions() []model.Option {
	t := c.Train
	return []model.Option{
		model.WithNEstimators(t.NEstimators),
		model.WithLearningRate(t.LearningRate),
		model.WithMaxDepth(t.MaxDepth),
		model.WithSubsample(t.Subsample),
		model.WithColsampleByTree(t.ColsampleByTree),
		model.WithEarlyStoppingRounds(t.EarlyStoppingRounds),
		model.WithMaxBin(t.MaxBin),
		model.WithRandomState(t.Seed),
	}
}
