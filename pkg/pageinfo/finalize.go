package pageinfo

import "sort"

// Finalize resolves each present page's PFN against attrs, merging the
// per-frame kernel flags into that page's composite flag word, then
// sorts the regions by start address and corrects any overlap between
// successive regions so that no two regions describe the same address
// twice.
//
// Overlap correction raises R[k].Start to min(E, R[k].End), where E is
// the highest End among R[0..k-1], and drops the corresponding prefix of
// R[k]'s per-page arrays. A region fully shadowed by an earlier one
// collapses to an empty region at its own original End rather than
// being pushed past it — E can
// legitimately exceed R[k].End when maps lines overlap completely, and
// raising Start past End would invert the region.
func Finalize(regions []*MappedRegion, attrs *FrameAttrReader) []*MappedRegion {
	for _, region := range regions {
		for i, pfn := range region.pfns {
			if region.CombinedFlags[i]&FlagPresent == 0 {
				continue
			}
			region.UseCounts[i] = attrs.UseCount(pfn)
			region.CombinedFlags[i] |= attrs.Flags(pfn) & frameFlagsMask
		}
		region.pfns = nil
	}

	sort.Slice(regions, func(i, j int) bool { return regions[i].Start < regions[j].Start })

	// maxEnd is the highest End among the regions already visited, so a
	// region that collapsed to empty does not hide a longer one before it.
	var maxEnd uint64
	for _, cur := range regions {
		if cur.Start >= maxEnd {
			maxEnd = cur.End
			continue
		}

		newStart := maxEnd
		if newStart > cur.End {
			newStart = cur.End
		}
		dropPages := (newStart - cur.Start) / pageSize
		cur.Start = newStart

		if cur.Start >= cur.End {
			cur.End = cur.Start
			cur.UseCounts = []uint32{}
			cur.CombinedFlags = []uint32{}
			continue
		}
		cur.UseCounts = cur.UseCounts[dropPages:]
		cur.CombinedFlags = cur.CombinedFlags[dropPages:]
		maxEnd = cur.End
	}
	return regions
}
