// Package resource bounds the work a compression pipeline runs at once.
//
// A Controller hands out worker slots for clustering jobs, reserves memory
// for their working sets, and rate limits artifact IO. A nil *Controller
// imposes no limits.
package resource
