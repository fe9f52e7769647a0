// Package mmap maps artifact files read-only into memory.
//
//	m, err := mmap.Open("positions.spqc")
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes() // valid until Close
package mmap
