package pageinfo

import "testing"

func presentRegion(start, end uint64, pages int) *MappedRegion {
	r := &MappedRegion{
		Start:         start,
		End:           end,
		UseCounts:     make([]uint32, pages),
		CombinedFlags: make([]uint32, pages),
		pfns:          make([]uint64, pages),
	}
	for i := range r.CombinedFlags {
		r.CombinedFlags[i] = FlagPresent
	}
	return r
}

func TestFinalizeOverlapCorrection(t *testing.T) {
	t.Run("partial overlap trims a prefix", func(t *testing.T) {
		a := presentRegion(0x1000, 0x3000, 2)
		b := presentRegion(0x2000, 0x4000, 2)
		attrs := NewFrameAttrReader(nil, 0)

		got := Finalize([]*MappedRegion{a, b}, attrs)

		if got[0].Start != 0x1000 || got[0].End != 0x3000 || len(got[0].UseCounts) != 2 {
			t.Errorf("first region unexpectedly changed: %+v", got[0])
		}
		if got[1].Start != 0x3000 || got[1].End != 0x4000 || len(got[1].UseCounts) != 1 {
			t.Errorf("second region = %+v, want start 0x3000 end 0x4000 len 1", got[1])
		}
	})

	t.Run("complete shadow collapses to empty", func(t *testing.T) {
		a := presentRegion(0x1000, 0x4000, 3)
		b := presentRegion(0x2000, 0x3000, 1)
		attrs := NewFrameAttrReader(nil, 0)

		got := Finalize([]*MappedRegion{a, b}, attrs)

		if got[1].Start != 0x3000 || got[1].End != 0x3000 {
			t.Errorf("second region = %+v, want collapsed to (0x3000,0x3000)", got[1])
		}
		if len(got[1].UseCounts) != 0 || len(got[1].CombinedFlags) != 0 {
			t.Errorf("second region arrays not cleared: %+v", got[1])
		}
	})

	t.Run("non-overlapping regions are untouched", func(t *testing.T) {
		a := presentRegion(0x1000, 0x2000, 1)
		b := presentRegion(0x3000, 0x4000, 1)
		attrs := NewFrameAttrReader(nil, 0)

		got := Finalize([]*MappedRegion{a, b}, attrs)

		if got[0].Start != 0x1000 || got[1].Start != 0x3000 {
			t.Errorf("regions reordered or mutated unexpectedly: %+v %+v", got[0], got[1])
		}
	})
}
