package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const MimeJSON = "application/json"
