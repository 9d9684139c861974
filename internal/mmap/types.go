package mmap

import "errors"

// AccessPattern is a hint to the kernel about upcoming reads.
type AccessPattern int

const (
	// AccessDefault gives no advice.
	AccessDefault AccessPattern = iota
	// AccessSequential is used for front-to-back record scans.
	AccessSequential
	// AccessRandom is used for ranged reads.
	AccessRandom
	// AccessWillNeed asks the kernel to prefetch.
	AccessWillNeed
	// AccessDontNeed releases cached pages.
	AccessDontNeed
)

var (
	// ErrClosed is returned when a closed mapping is accessed.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for files whose size cannot be mapped.
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrOutOfBounds is returned when a window exceeds the mapping.
	ErrOutOfBounds = errors.New("mmap: out of bounds")
	// ErrInvalidOffset is returned for negative offsets.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)
