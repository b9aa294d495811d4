package pageinfo

// Summary reports memory usage derived from a Snapshot. All three size
// fields are in mebibytes; ZeroUseCount is a raw page count.
type Summary struct {
	VirtualMiB      float64
	ResidentMiB     float64
	ProportionalMiB float64
	ZeroUseCount    int
}

const mib = 1024 * 1024

// Summarize computes virtual size, resident size, proportional set size
// and the zero-use-count page count for a snapshot.
//
// A present page with a THP flag but a zero use count is treated as
// having a use count of one for PSS purposes: transparent huge pages
// report a use count against the head page only, and a literal zero
// would make every tail page contribute an infinite share.
func Summarize(s *Snapshot) Summary {
	var vszPages, rssPages uint64
	var pss float64
	var zeroCount int

	for _, region := range s.Regions {
		vszPages += (region.End - region.Start) / pageSize
		for i, flags := range region.CombinedFlags {
			if flags&FlagPresent == 0 {
				continue
			}
			rssPages++

			useCount := region.UseCounts[i]
			if useCount == 0 && flags&FlagTHP != 0 {
				useCount = 1
			}
			if useCount == 0 {
				zeroCount++
				continue
			}
			pss += float64(pageSize) / float64(useCount)
		}
	}

	return Summary{
		VirtualMiB:      float64(vszPages*pageSize) / mib,
		ResidentMiB:     float64(rssPages*pageSize) / mib,
		ProportionalMiB: pss / mib,
		ZeroUseCount:    zeroCount,
	}
}
