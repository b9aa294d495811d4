package pageinfo

import "testing"

// newTestFrameAttrReader builds a FrameAttrReader directly from already
// populated FrameRanges and a flat buffer, bypassing NewFrameAttrReader's
// /proc/kpagecount and /proc/kpageflags reads so the lookup logic can be
// exercised without real kernel pseudo-files.
func newTestFrameAttrReader(ranges []FrameRange, buf []uint64) *FrameAttrReader {
	return &FrameAttrReader{ranges: ranges, buf: buf}
}

func sampleFrameAttrReader() *FrameAttrReader {
	ranges := []FrameRange{
		{Start: 100, Last: 105, UseCountOffset: 0, FlagOffset: 6},
		{Start: 200, Last: 202, UseCountOffset: 12, FlagOffset: 15},
	}
	// buf[i] = 1000+i identifies each slot uniquely so a wrong offset
	// computation shows up as a wrong value rather than a coincidental
	// match.
	buf := make([]uint64, 18)
	for i := range buf {
		buf[i] = uint64(1000 + i)
	}
	return newTestFrameAttrReader(ranges, buf)
}

func TestFrameAttrReaderUseCountAndFlags(t *testing.T) {
	r := sampleFrameAttrReader()

	tcases := []struct {
		name         string
		pfn          uint64
		wantUseCount uint32
		wantFlags    uint32
	}{
		{name: "first range, first frame", pfn: 100, wantUseCount: 1000, wantFlags: 1006},
		{name: "first range, middle frame", pfn: 103, wantUseCount: 1003, wantFlags: 1009},
		{name: "first range, last frame", pfn: 105, wantUseCount: 1005, wantFlags: 1011},
		{name: "second range, first frame", pfn: 200, wantUseCount: 1012, wantFlags: 1015},
		{name: "second range, last frame", pfn: 202, wantUseCount: 1014, wantFlags: 1017},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.UseCount(tc.pfn); got != tc.wantUseCount {
				t.Errorf("UseCount(%d) = %d, want %d", tc.pfn, got, tc.wantUseCount)
			}
			if got := r.Flags(tc.pfn); got != tc.wantFlags {
				t.Errorf("Flags(%d) = %d, want %d", tc.pfn, got, tc.wantFlags)
			}
		})
	}
}

// TestFrameAttrReaderCachePath drives locate through its cache-hit and
// cache-miss (binary search) paths by querying across ranges in an order
// that forces both.
func TestFrameAttrReaderCachePath(t *testing.T) {
	r := sampleFrameAttrReader()

	// The zero-value cache happens to point at range 0, so the first
	// query has to land on range 1 to force a genuine sort.Search miss.
	if got := r.locate(201); got != 1 {
		t.Fatalf("locate(201) = %d, want 1", got)
	}
	if r.cache != 1 {
		t.Fatalf("cache = %d after locating in range 1, want 1", r.cache)
	}

	// Same range again: should hit the cache without touching sort.Search.
	if got := r.locate(202); got != 1 {
		t.Fatalf("locate(202) = %d, want 1 (cache hit)", got)
	}

	// Back to range 0: another cache miss, resolved by binary search
	// and left as the new cached range.
	if got := r.locate(100); got != 0 {
		t.Fatalf("locate(100) = %d, want 0", got)
	}
	if r.cache != 0 {
		t.Fatalf("cache = %d after locating in range 0, want 0", r.cache)
	}

	// Same range again: cache hit.
	if got := r.locate(103); got != 0 {
		t.Fatalf("locate(103) = %d, want 0 (cache hit)", got)
	}
}

func TestFrameAttrReaderEmptyRanges(t *testing.T) {
	r := newTestFrameAttrReader(nil, nil)

	if got := r.UseCount(12345); got != 0 {
		t.Errorf("UseCount on an empty reader = %d, want 0", got)
	}
	if got := r.Flags(12345); got != 0 {
		t.Errorf("Flags on an empty reader = %d, want 0", got)
	}
}
