package load

import (
	"strings"

	appErrors "clickstream-backend/pkg/errors"
)

// RedshiftMode selects how statements reach the cluster.
type RedshiftMode string

const (
	ModeServerless  RedshiftMode = "SERVERLESS"
	ModeProvisioned RedshiftMode = "PROVISIONED"
)

// ParseMode accepts the deployment values ("Serverless", "Provisioned") in any case.
func ParseMode(value string) (RedshiftMode, error) {
	switch mode := RedshiftMode(strings.ToUpper(strings.TrimSpace(value))); mode {
	case ModeServerless, ModeProvisioned:
		return mode, nil
	}
	return "", appErrors.NewConfigurationMissingError("REDSHIFT_MODE").
		WithDetails(map[string]interface{}{"setting": "REDSHIFT_MODE", "value": value})
}

// Connection is either Serverless or Provisioned. The unexported method keeps
// other packages from adding variants.
type Connection interface {
	connection()
	Mode() RedshiftMode
}

// Serverless targets a Redshift Serverless workgroup.
type Serverless struct {
	WorkgroupName string
}

func (Serverless) connection() {}

// Mode implements Connection.
func (Serverless) Mode() RedshiftMode { return ModeServerless }

// Provisioned targets a provisioned cluster as a database user.
type Provisioned struct {
	DBUser            string
	ClusterIdentifier string
}

func (Provisioned) connection() {}

// Mode implements Connection.
func (Provisioned) Mode() RedshiftMode { return ModeProvisioned }

// ConnectionSettings are the mode-specific fields read from the environment.
type ConnectionSettings struct {
	WorkgroupName     string
	DBUser            string
	ClusterIdentifier string
}

// SelectConnection builds the connection variant for mode. Fields belonging to
// the other mode are ignored; fields the chosen mode needs must be present.
func SelectConnection(mode RedshiftMode, settings ConnectionSettings) (Connection, error) {
	switch mode {
	case ModeServerless:
		if settings.WorkgroupName == "" {
			return nil, appErrors.NewConfigurationMissingError("REDSHIFT_SERVERLESS_WORKGROUP_NAME")
		}
		return Serverless{WorkgroupName: settings.WorkgroupName}, nil
	case ModeProvisioned:
		if settings.DBUser == "" {
			return nil, appErrors.NewConfigurationMissingError("REDSHIFT_DB_USER")
		}
		if settings.ClusterIdentifier == "" {
			return nil, appErrors.NewConfigurationMissingError("REDSHIFT_CLUSTER_IDENTIFIER")
		}
		return Provisioned{DBUser: settings.DBUser, ClusterIdentifier: settings.ClusterIdentifier}, nil
	}
	return nil, appErrors.NewConfigurationMissingError("REDSHIFT_MODE")
}
