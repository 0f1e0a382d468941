package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader layers configuration sources. From lowest to highest priority:
//  1. defaults
//  2. the YAML file at path, when set
//  3. environment variables
type Loader struct {
	path string
}

// NewLoader creates a loader reading the YAML overlay at path. An empty path
// skips the file.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load builds and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := defaultConfig()

	if l.path != "" {
		if err := l.loadFile(cfg); err != nil {
			return nil, err
		}
	}

	loadEnvironmentVariables(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) loadFile(cfg *Config) error {
	file, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %w", l.path, err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", l.path, err)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Environment: "development",
		ServiceName: "clickstream-load-workflow",
		LogLevel:    "info",
		Events: EventsConfig{
			Source: "clickstream.load-workflow",
		},
	}
}

// loadEnvironmentVariables overlays every variable that is set on cfg.
func loadEnvironmentVariables(cfg *Config) {
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.ServiceName = getEnv("SERVICE_NAME", cfg.ServiceName)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.Ledger.TableName = getEnv("DYNAMODB_TABLE_NAME", cfg.Ledger.TableName)

	r := &cfg.Redshift
	r.Database = getEnv("REDSHIFT_DATABASE", r.Database)
	r.TargetTable = getEnv("REDSHIFT_ODS_TABLE_NAME", r.TargetTable)
	r.CopyRoleARN = getEnv("REDSHIFT_ROLE", r.CopyRoleARN)
	r.DataAPIRoleARN = getEnv("REDSHIFT_DATA_API_ROLE", r.DataAPIRoleARN)
	r.Mode = getEnv("REDSHIFT_MODE", r.Mode)
	r.WorkgroupName = getEnv("REDSHIFT_SERVERLESS_WORKGROUP_NAME", r.WorkgroupName)
	r.DBUser = getEnv("REDSHIFT_DB_USER", r.DBUser)
	r.ClusterIdentifier = getEnv("REDSHIFT_CLUSTER_IDENTIFIER", r.ClusterIdentifier)
	r.IdempotentSubmit = getEnvBool("REDSHIFT_IDEMPOTENT_SUBMIT", r.IdempotentSubmit)

	cfg.Events.BusName = getEnv("EVENT_BUS_NAME", cfg.Events.BusName)
	cfg.Events.Source = getEnv("EVENT_SOURCE", cfg.Events.Source)

	cfg.Metrics.Enabled = getEnvBool("ENABLE_METRICS", cfg.Metrics.Enabled)
	cfg.Metrics.Namespace = getEnv("METRICS_NAMESPACE", cfg.Metrics.Namespace)

	cfg.Tracing.Enabled = getEnvBool("ENABLE_TRACING", cfg.Tracing.Enabled)
	cfg.Tracing.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Tracing.Endpoint)
}
