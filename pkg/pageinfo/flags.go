package pageinfo

// Composite per-page flag word. Bits 0-22 come verbatim from
// /proc/kpageflags and are fixed by the kernel's user-space ABI; bits
// 23-27 are reserved and always zero; bits 28-31 are synthesized from
// /proc/<pid>/pagemap. See Component F for how the two halves are
// merged.
const (
	FlagLocked       uint32 = 1 << 0
	FlagError        uint32 = 1 << 1
	FlagReferenced   uint32 = 1 << 2
	FlagUptodate     uint32 = 1 << 3
	FlagDirty        uint32 = 1 << 4
	FlagLRU          uint32 = 1 << 5
	FlagActive       uint32 = 1 << 6
	FlagSlab         uint32 = 1 << 7
	FlagWriteback    uint32 = 1 << 8
	FlagReclaim      uint32 = 1 << 9
	FlagBuddy        uint32 = 1 << 10
	FlagMmap         uint32 = 1 << 11
	FlagAnon         uint32 = 1 << 12
	FlagSwapcache    uint32 = 1 << 13
	FlagSwapbacked   uint32 = 1 << 14
	FlagCompoundHead uint32 = 1 << 15
	FlagCompoundTail uint32 = 1 << 16
	FlagHuge         uint32 = 1 << 17
	FlagUnevictable  uint32 = 1 << 18
	FlagHWPoison     uint32 = 1 << 19
	FlagNoPage       uint32 = 1 << 20
	FlagKSM          uint32 = 1 << 21
	FlagTHP          uint32 = 1 << 22

	// FlagSoftDirty through FlagPresent are sourced from the pagemap
	// entry rather than /proc/kpageflags.
	FlagSoftDirty        uint32 = 1 << 28
	FlagFileOrSharedAnon uint32 = 1 << 29
	FlagSwapped          uint32 = 1 << 30
	FlagPresent          uint32 = 1 << 31

	// frameFlagsMask keeps a raw /proc/kpageflags word from bleeding
	// into the reserved or pagemap-owned bits of the composite word.
	frameFlagsMask uint32 = 0x7fffff
)
