package port

// ObjectStore reads and writes named text blobs in a bucket.
type ObjectStore interface {
	// DownloadText fetches an object and decodes it as UTF-8. The second
	// return is false when the object is missing or not valid UTF-8.
	DownloadText(bucket, name string) (string, bool, error)

	// Upload stores a local file under the given object name.
	Upload(bucket, localPath, name string) error

	// List returns the names of objects under the given prefix.
	List(bucket, prefix string) ([]string, error)
}
