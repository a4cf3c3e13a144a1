// Package storage is the object-storage gateway.
//
// A Gateway wraps one long-lived Backend created at startup by Component
// and exposes upload, download, delete, list, presigned URL and image
// upload operations. Every failure is a *Error carrying a Kind
// (not found, access denied, transient, unknown) so callers branch with
// IsNotFound, IsAccessDenied or IsTransient instead of parsing messages.
//
// # Backends
//
//   - storage/s3: Amazon S3 via aws-sdk-go-v2 (upload manager, presign client)
//   - storage/minio: MinIO and S3-compatible servers via minio-go
//   - storage/local: local filesystem for development
//
// Backends register themselves on import:
//
//	import _ "github.com/kbukum/backend-template/storage/s3"
//
//	comp := storage.NewComponent(storage.Config{
//	    Enabled:   true,
//	    Provider:  "s3",
//	    Bucket:    "media",
//	    Region:    "eu-central-1",
//	    PublicURL: "https://media.s3.eu-central-1.amazonaws.com",
//	}, nil, log)
package storage
