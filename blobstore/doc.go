// Package blobstore stores codebook artifacts and manifests.
//
// BlobStore is the interface for reading and writing named blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, reads through read-only mmap
//   - MemoryStore: in-memory, for tests and dry runs
//   - s3.Store: Amazon S3 with multipart uploads and CRC32C checksums
//   - s3.DDBCommitStore: S3 plus DynamoDB for atomic CURRENT commits
//   - minio.Store: MinIO and other S3-compatible services
//
// Names are slash separated ("<run>/positions.spq"). Put is atomic with
// respect to readers: a reader sees either the old or the new content.
package blobstore
