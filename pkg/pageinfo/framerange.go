package pageinfo

import "sort"

// PlanFrameRanges dedups and sorts pfns, coalesces the result into
// FrameRanges no more than maxGapSize apart, and assigns each range its
// use-count and flag offsets into a single flat storage plan.
//
// It returns the ranges in ascending order and the total number of
// uint64 words a FrameAttrReader must allocate to hold them.
func PlanFrameRanges(pfns []uint64) ([]FrameRange, int) {
	if len(pfns) == 0 {
		return nil, 0
	}

	sorted := append([]uint64(nil), pfns...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	deduped := sorted[:1]
	for _, pfn := range sorted[1:] {
		if pfn != deduped[len(deduped)-1] {
			deduped = append(deduped, pfn)
		}
	}

	ranges := make([]FrameRange, 0, len(deduped))
	ranges = append(ranges, FrameRange{Start: deduped[0], Last: deduped[0]})
	for _, pfn := range deduped[1:] {
		last := &ranges[len(ranges)-1]
		if pfn-last.Last > maxGapSize {
			ranges = append(ranges, FrameRange{Start: pfn, Last: pfn})
		} else {
			last.Last = pfn
		}
	}

	total := 0
	for i := range ranges {
		length := ranges[i].Len()
		ranges[i].UseCountOffset = total
		total += length
		ranges[i].FlagOffset = total
		total += length
	}
	return ranges, total
}
