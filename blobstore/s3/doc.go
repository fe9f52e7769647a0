// Package s3 provides Amazon S3 implementations of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.NewStoreFromConfig(ctx, "my-bucket", "splats/",
//	    func(o *s3.Options) { o.CreateOnly = true },
//	)
//
// With concurrent publishers, wrap the store in a DDBCommitStore so that the
// CURRENT pointer is advanced with a DynamoDB conditional write.
//
// # Features
//
//   - Multipart streaming uploads through the S3 transfer manager
//   - CRC32C checksums on every upload
//   - Optional create-only writes (If-None-Match) for immutable artifacts
//   - Automatic pagination for listing
package s3
