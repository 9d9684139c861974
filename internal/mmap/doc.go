// Package mmap maps event and output files read-only into memory.
//
// The local blob store opens JSON-lines inputs through a Mapping so that
// recordio readers decode straight out of the page cache:
//
//	m, err := mmap.Open("events.jsonl.zst")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Unix uses mmap(2) and madvise(2). Windows uses CreateFileMapping and
// MapViewOfFile; Advise is a no-op there.
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers must
// stop using slices returned by Bytes or Window once Close has been called.
package mmap
