package mig

// ManifestSource loads and writes timestamp manifests. Implemented by
// the manifest package; the service depends only on this interface.
type ManifestSource interface {
	// Load reads an ordered sequence of records from the manifest at
	// path. Input order is preserved — it determines report order.
	Load(path string) ([]TimestampRecord, error)

	// Write stores records as a plaintext manifest at path.
	Write(path string, records []TimestampRecord) error
}
