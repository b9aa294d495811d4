package pageinfo

import "os"

// pageSize is read once at startup, following the same pattern as
// pkg/memtier's constPagesize/constUPagesize: the kernel's page size is
// fixed for the life of the process, so there is no reason to call
// os.Getpagesize() more than once.
var pageSize = uint64(os.Getpagesize())

// PageSize returns the size, in bytes, of one page on this system.
func PageSize() uint64 {
	return pageSize
}

// maxGapSize bounds how far apart two PFNs can be while still belonging
// to the same coalesced FrameRange. A gap of maxGapSize+1 or more forces
// a new range, trading a few wasted positioned-read bytes for fewer
// syscalls on typical, mostly-contiguous physical layouts.
const maxGapSize = 16
