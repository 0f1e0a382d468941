package load

import "regexp"

// schemaDisallowed matches every character Redshift rejects in an unquoted
// schema name that tenant ids are known to carry.
var schemaDisallowed = regexp.MustCompile(`[.\-]`)

// ResolveSchema maps a tenant id onto the schema holding its tables.
// Length limits are left to the database.
func ResolveSchema(tenantID string) string {
	return schemaDisallowed.ReplaceAllString(tenantID, "_")
}
