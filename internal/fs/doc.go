// Package fs abstracts the file system operations the local blob store
// performs so tests can inject failures.
//
// # Implementations
//
//   - [LocalFS]: the os package
//   - [FaultyFS]: wraps another FileSystem and fails operations on matching paths
//
// # Usage
//
// Production code uses fs.Default:
//
//	f, err := fs.Default.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
//
// Tests inject a [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("CURRENT", fs.Fault{FailOnRename: true})
//
// Operations take no context.Context; local syscalls cannot be interrupted.
package fs
