package load

import "fmt"

const copyTemplate = "COPY %s.%s FROM '%s' IAM_ROLE '%s' STATUPDATE ON FORMAT AS PARQUET SERIALIZETOJSON MANIFEST;"

// BuildCopyStatement renders the COPY that loads every file listed in the
// manifest at manifestURI into schema.table. STATUPDATE ON refreshes optimizer
// statistics once the COPY succeeds.
func BuildCopyStatement(schema, table, manifestURI, roleARN string) string {
	return fmt.Sprintf(copyTemplate, schema, table, manifestURI, roleARN)
}
