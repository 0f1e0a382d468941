// Package load holds the types shared by the manifest load workflow: job
// statuses kept in the ledger, manifests handed over by the upstream step,
// Redshift connection variants and the COPY statement template.
package load
