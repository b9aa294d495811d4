package pageinfo

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

const (
	pagemapEntryBytes = 8

	pagemapPresentBit   = uint64(1) << 63
	pagemapSwapBit      = uint64(1) << 62
	pagemapFileBit      = uint64(1) << 61
	pagemapSoftDirtyBit = uint64(1) << 55

	// pfnMask isolates bits 0..54: the PFN occupies that range when
	// pagemapPresentBit is set. Grounded on the (1<<55)-1 mask used to
	// pull a PFN out of a pagemap word.
	pfnMask = uint64(1)<<55 - 1
)

// ReadPagemap reads one pagemap entry per page for every region, in
// region order. For each page it records the pagemap-sourced half of the
// composite flag word directly into region.CombinedFlags, and stashes
// the backing PFN (when present) into the region's internal pfns slice
// for the frame attribute reader to resolve later.
//
// It returns every PFN observed across all regions, unsorted and with
// duplicates, ready for PlanFrameRanges.
//
// If /proc/<pid>/pagemap cannot be opened at all, ReadPagemap returns a
// nil PFN slice and the open error; the caller treats that as a
// permission failure and should fall back to an empty snapshot rather
// than propagate it. Short reads within a region (the process exited or
// unmapped memory mid-read) are not fatal: whatever pages weren't read
// keep their zero-valued CombinedFlags and pfns entries.
func ReadPagemap(pid int, regions []*MappedRegion) ([]uint64, error) {
	path := procPath(pid, "pagemap")
	pm, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer pm.Close()

	pfns := make([]uint64, 0, 1024)
	buf := make([]byte, 0, 4096)

	for _, region := range regions {
		pageCount := len(region.UseCounts)
		if pageCount == 0 {
			continue
		}
		need := pageCount * pagemapEntryBytes
		if cap(buf) < need {
			buf = make([]byte, need)
		}
		buf = buf[:need]

		offset := int64((region.Start / pageSize) * pagemapEntryBytes)
		n, err := readAtLeastAt(pm, buf, offset)
		if err != nil && n == 0 {
			continue
		}

		entries := n / pagemapEntryBytes
		for i := 0; i < entries; i++ {
			entry := binary.LittleEndian.Uint64(buf[i*pagemapEntryBytes:])
			region.CombinedFlags[i] = pagemapFlags(entry)
			if entry&pagemapPresentBit != 0 {
				pfn := entry & pfnMask
				region.pfns[i] = pfn
				pfns = append(pfns, pfn)
			}
		}
	}
	return pfns, nil
}

// readAtLeastAt seeks to offset and reads as much of buf as the
// underlying file will give up, tolerating EOF the way procPagemapCb
// does when a region runs past the end of a shrinking address space.
func readAtLeastAt(f *os.File, buf []byte, offset int64) (int, error) {
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}
	n, err := io.ReadFull(f, buf)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return n, nil
	}
	return n, err
}

// pagemapFlags extracts the four pagemap-sourced bits of the composite
// flag word from a raw pagemap entry: present, swapped, file-or-shared-
// anon, and soft-dirty, landing at bits 31, 30, 29 and 28 respectively.
func pagemapFlags(entry uint64) uint32 {
	return uint32(((entry >> 27) & 0x10000000) | ((entry >> 32) & 0xe0000000))
}
