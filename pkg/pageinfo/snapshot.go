package pageinfo

// Acquire runs the full acquisition pipeline for pid: region reader,
// pagemap reader, frame range planner, frame attribute reader, then
// finalization.
//
// A failure reading /proc/<pid>/maps or opening /proc/<pid>/pagemap
// yields an empty Snapshot. Only the maps read's error is returned,
// since a process that has already exited is the overwhelmingly common
// cause; a pagemap open failure returns a nil error, and callers that
// need to tell it apart have to check the pagemap themselves.
func Acquire(pid int) (*Snapshot, error) {
	regions, err := ReadRegions(pid)
	if err != nil {
		return &Snapshot{Pid: pid}, err
	}
	if len(regions) == 0 {
		return &Snapshot{Pid: pid}, nil
	}

	pfns, err := ReadPagemap(pid, regions)
	if err != nil {
		return &Snapshot{Pid: pid}, nil
	}

	ranges, total := PlanFrameRanges(pfns)
	attrs := NewFrameAttrReader(ranges, total)

	return &Snapshot{Pid: pid, Regions: Finalize(regions, attrs)}, nil
}
