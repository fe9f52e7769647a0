// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible systems such as Ceph, Garage
// and SeaweedFS, without pulling in the AWS SDK.
//
// # Basic Usage
//
//	store, err := minioblob.Dial("localhost:9000", "minioadmin", "minioadmin", false,
//	    "my-bucket", "splats/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	run, err := codebook.Publish(ctx, store, books)
//
// An existing *minio.Client can be wrapped with NewStore.
package minio
