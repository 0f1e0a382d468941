package load

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCopyStatement(t *testing.T) {
	stmt := BuildCopyStatement(
		"app1_test_project",
		"ods_events",
		"s3://bucket/manifest/app1.manifest",
		"arn:aws:iam::123456789012:role/copy",
	)

	assert.Equal(t,
		"COPY app1_test_project.ods_events FROM 's3://bucket/manifest/app1.manifest' "+
			"IAM_ROLE 'arn:aws:iam::123456789012:role/copy' STATUPDATE ON FORMAT AS PARQUET SERIALIZETOJSON MANIFEST;",
		stmt)
}

func TestManifestHelpers(t *testing.T) {
	m := Manifest{
		Entries: []ManifestEntry{
			{URL: "s3://bucket/1.parquet", Meta: map[string]interface{}{"content_length": float64(10324001)}},
			{URL: "s3://bucket/2.parquet"},
		},
	}

	assert.Equal(t, []string{"s3://bucket/1.parquet", "s3://bucket/2.parquet"}, m.SourceURIs())
	assert.Equal(t, int64(10324001), m.Entries[0].ContentLength())
	assert.Equal(t, int64(0), m.Entries[1].ContentLength())
}
