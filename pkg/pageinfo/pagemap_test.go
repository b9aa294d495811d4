package pageinfo

import "testing"

func TestPagemapFlags(t *testing.T) {
	tcases := []struct {
		name  string
		entry uint64
		want  uint32
	}{
		{
			name:  "zero entry",
			entry: 0,
			want:  0,
		},
		{
			name:  "present only",
			entry: pagemapPresentBit,
			want:  FlagPresent,
		},
		{
			name:  "swapped only",
			entry: pagemapSwapBit,
			want:  FlagSwapped,
		},
		{
			name:  "file or shared anon only",
			entry: pagemapFileBit,
			want:  FlagFileOrSharedAnon,
		},
		{
			name:  "soft dirty only",
			entry: pagemapSoftDirtyBit,
			want:  FlagSoftDirty,
		},
		{
			name:  "present and soft dirty, resident page",
			entry: pagemapPresentBit | pagemapSoftDirtyBit,
			want:  FlagPresent | FlagSoftDirty,
		},
		{
			name:  "swapped and file backed",
			entry: pagemapSwapBit | pagemapFileBit,
			want:  FlagSwapped | FlagFileOrSharedAnon,
		},
		{
			name:  "all four flag bits set",
			entry: pagemapPresentBit | pagemapSwapBit | pagemapFileBit | pagemapSoftDirtyBit,
			want:  FlagPresent | FlagSwapped | FlagFileOrSharedAnon | FlagSoftDirty,
		},
		{
			name:  "PFN bits do not leak into the flag word",
			entry: pagemapPresentBit | pfnMask,
			want:  FlagPresent,
		},
		{
			name:  "reserved bits between the PFN and the flag bits are ignored",
			entry: uint64(1) << 56,
			want:  0,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			if got := pagemapFlags(tc.entry); got != tc.want {
				t.Errorf("pagemapFlags(%#x) = %#x, want %#x", tc.entry, got, tc.want)
			}
		})
	}
}
