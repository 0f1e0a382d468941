package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"clickstream-backend/internal/domain/load"
	appErrors "clickstream-backend/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// Config holds all settings of a workflow step. It is built once per process
// and passed to every component that needs it.
type Config struct {
	Environment string `yaml:"environment"`
	ServiceName string `yaml:"service_name"`
	AWSRegion   string `yaml:"aws_region" validate:"required"`
	LogLevel    string `yaml:"log_level"`

	Ledger   LedgerConfig   `yaml:"ledger"`
	Redshift RedshiftConfig `yaml:"redshift"`
	Events   EventsConfig   `yaml:"events"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// LedgerConfig points at the DynamoDB job status table.
type LedgerConfig struct {
	TableName string `yaml:"table_name" validate:"required"`
}

// RedshiftConfig describes the load target and how to reach it.
type RedshiftConfig struct {
	Database       string `yaml:"database" validate:"required"`
	TargetTable    string `yaml:"target_table" validate:"required"`
	CopyRoleARN    string `yaml:"copy_role_arn" validate:"required"`
	DataAPIRoleARN string `yaml:"data_api_role_arn"`

	Mode              string `yaml:"mode" validate:"required,oneof=SERVERLESS PROVISIONED"`
	WorkgroupName     string `yaml:"workgroup_name" validate:"required_if=Mode SERVERLESS"`
	DBUser            string `yaml:"db_user" validate:"required_if=Mode PROVISIONED"`
	ClusterIdentifier string `yaml:"cluster_identifier" validate:"required_if=Mode PROVISIONED"`

	// IdempotentSubmit attaches a client token derived from the workflow
	// execution and manifest to every statement.
	IdempotentSubmit bool `yaml:"idempotent_submit"`
}

// EventsConfig configures load outcome notifications. An empty bus disables them.
type EventsConfig struct {
	BusName string `yaml:"bus_name"`
	Source  string `yaml:"source"`
}

// MetricsConfig configures the CloudWatch metrics flush.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// TracingConfig configures the OTLP trace exporter.
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint" validate:"required_if=Enabled true"`
}

// envNames maps a struct field to the variable that sets it, for error messages.
var envNames = map[string]string{
	"Config.AWSRegion":                  "AWS_REGION",
	"Config.Ledger.TableName":           "DYNAMODB_TABLE_NAME",
	"Config.Redshift.Database":          "REDSHIFT_DATABASE",
	"Config.Redshift.TargetTable":       "REDSHIFT_ODS_TABLE_NAME",
	"Config.Redshift.CopyRoleARN":       "REDSHIFT_ROLE",
	"Config.Redshift.Mode":              "REDSHIFT_MODE",
	"Config.Redshift.WorkgroupName":     "REDSHIFT_SERVERLESS_WORKGROUP_NAME",
	"Config.Redshift.DBUser":            "REDSHIFT_DB_USER",
	"Config.Redshift.ClusterIdentifier": "REDSHIFT_CLUSTER_IDENTIFIER",
	"Config.Tracing.Endpoint":           "OTEL_EXPORTER_OTLP_ENDPOINT",
}

// LoadConfig loads configuration from an optional CONFIG_FILE overlay and
// environment variables, then validates it.
func LoadConfig() (*Config, error) {
	return NewLoader(os.Getenv("CONFIG_FILE")).Load()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	c.Redshift.Mode = strings.ToUpper(strings.TrimSpace(c.Redshift.Mode))

	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return appErrors.NewInternalError("failed to validate configuration").WithCause(err)
	}

	missing := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		name, ok := envNames[fe.StructNamespace()]
		if !ok {
			name = fe.StructNamespace()
		}
		missing = append(missing, name)
	}

	return appErrors.NewConfigurationMissingError(strings.Join(missing, ", ")).
		WithDetails(map[string]interface{}{"settings": missing}).
		WithCause(err)
}

// Connection resolves the Redshift connection variant for the configured mode.
func (r RedshiftConfig) Connection() (load.Connection, error) {
	mode, err := load.ParseMode(r.Mode)
	if err != nil {
		return nil, err
	}
	return load.SelectConnection(mode, load.ConnectionSettings{
		WorkgroupName:     r.WorkgroupName,
		DBUser:            r.DBUser,
		ClusterIdentifier: r.ClusterIdentifier,
	})
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// MetricsNamespace returns the CloudWatch namespace for this deployment.
func (c *Config) MetricsNamespace() string {
	if c.Metrics.Namespace != "" {
		return c.Metrics.Namespace
	}
	return fmt.Sprintf("Clickstream/%s", c.Environment)
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return value == "yes"
	}
	return parsed
}
