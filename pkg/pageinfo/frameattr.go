package pageinfo

import (
	"encoding/binary"
	"os"
	"sort"
)

const (
	kpagecountPath = "/proc/kpagecount"
	kpageflagsPath = "/proc/kpageflags"

	kpageEntryBytes = 8
)

// FrameAttrReader resolves use counts and kernel-level flags for the
// PFNs described by a set of FrameRanges, reading each pseudo-file once
// per range rather than once per frame.
type FrameAttrReader struct {
	ranges []FrameRange
	buf    []uint64 // flat storage: per range, use counts then flags
	cache  int       // index into ranges of the last range consulted
}

// NewFrameAttrReader allocates the flat buffer described by ranges and
// total, then fills it from /proc/kpagecount and /proc/kpageflags.
//
// Neither pseudo-file is required to exist: if opening either one fails,
// the buffer is left zeroed and every later query returns zero, matching
// the permission-failure behavior documented for this component.
func NewFrameAttrReader(ranges []FrameRange, total int) *FrameAttrReader {
	r := &FrameAttrReader{ranges: ranges, buf: make([]uint64, total)}
	if total == 0 {
		return r
	}

	countFile, err := os.Open(kpagecountPath)
	if err != nil {
		return r
	}
	defer countFile.Close()

	flagsFile, err := os.Open(kpageflagsPath)
	if err != nil {
		return r
	}
	defer flagsFile.Close()

	byteBuf := make([]byte, 0, 4096)
	for _, fr := range ranges {
		length := fr.Len()
		need := length * kpageEntryBytes
		if cap(byteBuf) < need {
			byteBuf = make([]byte, need)
		}
		byteBuf = byteBuf[:need]

		offset := int64(fr.Start) * kpageEntryBytes
		readWords(countFile, offset, byteBuf, r.buf[fr.UseCountOffset:fr.UseCountOffset+length])
		readWords(flagsFile, offset, byteBuf, r.buf[fr.FlagOffset:fr.FlagOffset+length])
	}
	return r
}

// readWords reads len(dst)*8 bytes from f at offset into scratch, then
// decodes whatever arrived (a short read near EOF just leaves a zeroed
// tail) into dst as little-endian uint64 words.
func readWords(f *os.File, offset int64, scratch []byte, dst []uint64) {
	n, err := f.ReadAt(scratch[:len(dst)*kpageEntryBytes], offset)
	if err != nil && n == 0 {
		return
	}
	words := n / kpageEntryBytes
	for i := 0; i < words; i++ {
		dst[i] = binary.LittleEndian.Uint64(scratch[i*kpageEntryBytes:])
	}
}

// UseCount returns the system-wide mapping count for pfn. The caller
// must only query PFNs that were included in the ranges this reader was
// built from.
func (r *FrameAttrReader) UseCount(pfn uint64) uint32 {
	if len(r.ranges) == 0 {
		return 0
	}
	fr := r.ranges[r.locate(pfn)]
	return uint32(r.buf[fr.UseCountOffset+int(pfn-fr.Start)])
}

// Flags returns the low 32 bits of the raw /proc/kpageflags word for
// pfn. Bits above 22 may be set by the kernel; Finalize masks them off
// with frameFlagsMask before merging.
func (r *FrameAttrReader) Flags(pfn uint64) uint32 {
	if len(r.ranges) == 0 {
		return 0
	}
	fr := r.ranges[r.locate(pfn)]
	return uint32(r.buf[fr.FlagOffset+int(pfn-fr.Start)])
}

// locate returns the index of the range containing pfn. It checks the
// last range consulted first; on a miss it falls back to a binary
// search over range.Last, the same technique pkg/memtier's AddrDatas
// uses to find the address range overlapping a query point.
func (r *FrameAttrReader) locate(pfn uint64) int {
	if r.cache < len(r.ranges) {
		fr := r.ranges[r.cache]
		if pfn >= fr.Start && pfn <= fr.Last {
			return r.cache
		}
	}
	idx := sort.Search(len(r.ranges), func(i int) bool { return r.ranges[i].Last >= pfn })
	r.cache = idx
	return idx
}
