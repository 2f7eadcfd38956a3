// Package cloudwriter uploads telemetry archives to object storage.
package cloudwriter

// Writer buffers writes and uploads the object on Close.
type Writer interface {
	Write(data []byte) (int, error)
	Close() error
}

// Factory creates writers bound to a bucket and object path.
type Factory interface {
	NewWriter(bucket, objectPath string) (Writer, error)
}
