package redshift

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
)

const roleSessionName = "clickstream-load-workflow"

// AssumeRoleConfig returns a copy of base whose credentials come from assuming
// roleARN. base is returned unchanged when roleARN is empty.
func AssumeRoleConfig(base aws.Config, client stscreds.AssumeRoleAPIClient, roleARN string) aws.Config {
	if roleARN == "" {
		return base
	}

	cfg := base.Copy()
	cfg.Credentials = aws.NewCredentialsCache(
		stscreds.NewAssumeRoleProvider(client, roleARN, func(o *stscreds.AssumeRoleOptions) {
			o.RoleSessionName = roleSessionName
		}),
	)
	return cfg
}
