package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"clickstream-backend/internal/config"
	"clickstream-backend/internal/domain/load"
	appErrors "clickstream-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var requiredEnv = map[string]string{
	"AWS_REGION":              "us-east-2",
	"DYNAMODB_TABLE_NAME":     "load-jobs",
	"REDSHIFT_DATABASE":       "project1",
	"REDSHIFT_ODS_TABLE_NAME": "ods_events",
	"REDSHIFT_ROLE":           "arn:aws:iam::123456789012:role/copy",
}

var allEnv = []string{
	"CONFIG_FILE", "ENVIRONMENT", "SERVICE_NAME", "AWS_REGION", "LOG_LEVEL",
	"DYNAMODB_TABLE_NAME", "REDSHIFT_DATABASE", "REDSHIFT_ODS_TABLE_NAME",
	"REDSHIFT_ROLE", "REDSHIFT_DATA_API_ROLE", "REDSHIFT_MODE",
	"REDSHIFT_SERVERLESS_WORKGROUP_NAME", "REDSHIFT_DB_USER", "REDSHIFT_CLUSTER_IDENTIFIER",
	"REDSHIFT_IDEMPOTENT_SUBMIT", "EVENT_BUS_NAME", "EVENT_SOURCE", "ENABLE_METRICS",
	"METRICS_NAMESPACE", "ENABLE_TRACING", "OTEL_EXPORTER_OTLP_ENDPOINT",
}

// setEnv clears every recognized variable, then applies the required set and overrides.
func setEnv(t *testing.T, overrides map[string]string) {
	t.Helper()
	for _, key := range allEnv {
		t.Setenv(key, "")
	}
	for key, value := range requiredEnv {
		t.Setenv(key, value)
	}
	for key, value := range overrides {
		t.Setenv(key, value)
	}
}

func TestLoadConfigServerless(t *testing.T) {
	setEnv(t, map[string]string{
		"REDSHIFT_MODE":                      "Serverless",
		"REDSHIFT_SERVERLESS_WORKGROUP_NAME": "wg1",
		"REDSHIFT_DATA_API_ROLE":             "arn:aws:iam::123456789012:role/data-api",
	})

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "us-east-2", cfg.AWSRegion)
	assert.Equal(t, "load-jobs", cfg.Ledger.TableName)
	assert.Equal(t, "ods_events", cfg.Redshift.TargetTable)
	assert.Equal(t, "SERVERLESS", cfg.Redshift.Mode)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.Redshift.IdempotentSubmit)

	conn, err := cfg.Redshift.Connection()
	require.NoError(t, err)
	assert.Equal(t, load.Serverless{WorkgroupName: "wg1"}, conn)
}

func TestLoadConfigProvisioned(t *testing.T) {
	setEnv(t, map[string]string{
		"REDSHIFT_MODE":               "Provisioned",
		"REDSHIFT_DB_USER":            "bi_user",
		"REDSHIFT_CLUSTER_IDENTIFIER": "cluster1",
		"REDSHIFT_IDEMPOTENT_SUBMIT":  "true",
	})

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Redshift.IdempotentSubmit)

	conn, err := cfg.Redshift.Connection()
	require.NoError(t, err)
	provisioned, ok := conn.(load.Provisioned)
	require.True(t, ok)
	assert.Equal(t, "bi_user", provisioned.DBUser)
	assert.Equal(t, "cluster1", provisioned.ClusterIdentifier)
}

func TestLoadConfigMissingValues(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		setting   string
	}{
		{
			name:      "no mode",
			overrides: map[string]string{},
			setting:   "REDSHIFT_MODE",
		},
		{
			name:      "unknown mode",
			overrides: map[string]string{"REDSHIFT_MODE": "New_Serverless"},
			setting:   "REDSHIFT_MODE",
		},
		{
			name:      "serverless without workgroup",
			overrides: map[string]string{"REDSHIFT_MODE": "Serverless"},
			setting:   "REDSHIFT_SERVERLESS_WORKGROUP_NAME",
		},
		{
			name: "provisioned without cluster",
			overrides: map[string]string{
				"REDSHIFT_MODE":    "Provisioned",
				"REDSHIFT_DB_USER": "bi_user",
			},
			setting: "REDSHIFT_CLUSTER_IDENTIFIER",
		},
		{
			name: "no ledger table",
			overrides: map[string]string{
				"REDSHIFT_MODE":                      "Serverless",
				"REDSHIFT_SERVERLESS_WORKGROUP_NAME": "wg1",
				"DYNAMODB_TABLE_NAME":                "",
			},
			setting: "DYNAMODB_TABLE_NAME",
		},
		{
			name: "tracing without endpoint",
			overrides: map[string]string{
				"REDSHIFT_MODE":                      "Serverless",
				"REDSHIFT_SERVERLESS_WORKGROUP_NAME": "wg1",
				"ENABLE_TRACING":                     "true",
			},
			setting: "OTEL_EXPORTER_OTLP_ENDPOINT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.overrides)

			cfg, err := config.LoadConfig()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.True(t, appErrors.IsConfigurationMissing(err))
			assert.Contains(t, err.Error(), tt.setting)
		})
	}
}

func TestLoaderYAMLOverlay(t *testing.T) {
	setEnv(t, map[string]string{"REDSHIFT_DATABASE": "from_env"})

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
environment: staging
redshift:
  database: from_file
  mode: serverless
  workgroup_name: wg-file
events:
  bus_name: load-events
metrics:
  enabled: true
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := config.NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "from_env", cfg.Redshift.Database, "environment wins over file")
	assert.Equal(t, "wg-file", cfg.Redshift.WorkgroupName)
	assert.Equal(t, "load-events", cfg.Events.BusName)
	assert.Equal(t, "clickstream.load-workflow", cfg.Events.Source)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "Clickstream/staging", cfg.MetricsNamespace())
}

func TestLoaderMissingFile(t *testing.T) {
	setEnv(t, nil)

	_, err := config.NewLoader(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	assert.Error(t, err)
}
