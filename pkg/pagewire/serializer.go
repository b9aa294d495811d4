package pagewire

import (
	"encoding/binary"
	"unsafe"

	"github.com/memscope/memscope/pkg/pageinfo"
)

// bufferSize is the size of the Serializer's internal output buffer.
// When the buffer is empty and at least bufferSize bytes of a region's
// use-count or combined-flags array remain, that slice is handed to the
// caller directly off the Snapshot's backing memory instead of being
// copied through the buffer.
const bufferSize = 16 * 1024

type regionStage int

const (
	stageHeader regionStage = iota
	stageName
	stageUseCounts
	stageFlags
)

// Serializer resumably encodes a Snapshot into the pagewire byte stream.
// SerializeMore is called repeatedly; each call returns the next
// contiguous slice of the stream, and a zero-length return means the
// snapshot has been fully emitted.
//
// The Snapshot passed to NewSerializer must not be mutated while a
// Serializer is still emitting it: the fast path for large use-count and
// combined-flags arrays returns a slice pointing directly into the
// Snapshot's backing memory rather than copying it.
type Serializer struct {
	snapshot   *pageinfo.Snapshot
	prefixSent bool
	regionIdx  int
	stage      regionStage
	// stageOffset counts bytes already emitted of the current stage.
	stageOffset int
	header      [regionHeaderBytes]byte
	nameBytes   []byte // name + padding for the current region; lazy

	buf [bufferSize]byte
}

// NewSerializer returns a Serializer that will emit s.
func NewSerializer(s *pageinfo.Snapshot) *Serializer {
	return &Serializer{snapshot: s}
}

// BodyLength returns the number of bytes the Body of s will occupy on
// the wire, not counting the 8-byte length prefix.
func BodyLength(s *pageinfo.Snapshot) uint64 {
	var total uint64
	for _, r := range s.Regions {
		n := uint64(len(r.BackingFile))
		pages := uint64(len(r.UseCounts))
		total += regionHeaderBytes + n + uint64(namePad(len(r.BackingFile))) + pages*4 + pages*4
	}
	return total
}

// SerializeMore returns the next contiguous chunk of the wire stream, up
// to bufferSize bytes (or, on the zero-copy fast path, a full
// bufferSize-sized slice of a region's own array memory). A zero-length
// slice means the entire snapshot has been emitted; further calls keep
// returning zero-length slices.
func (s *Serializer) SerializeMore() []byte {
	n := 0
	if !s.prefixSent {
		binary.LittleEndian.PutUint64(s.buf[0:8], BodyLength(s.snapshot))
		s.prefixSent = true
		n = 8
	}

	for s.regionIdx < len(s.snapshot.Regions) {
		region := s.snapshot.Regions[s.regionIdx]
		switch s.stage {
		case stageHeader:
			if s.stageOffset == 0 {
				binary.LittleEndian.PutUint64(s.header[0:8], region.Start)
				binary.LittleEndian.PutUint64(s.header[8:16], region.End)
				binary.LittleEndian.PutUint32(s.header[16:20], uint32(len(region.BackingFile)))
			}
			copied := s.place(s.header[s.stageOffset:], n)
			s.stageOffset += copied
			n += copied
			if s.stageOffset < regionHeaderBytes {
				return s.buf[:n]
			}
			s.stage, s.stageOffset = stageName, 0

		case stageName:
			if s.nameBytes == nil {
				s.nameBytes = namePadded(region.BackingFile)
			}
			copied := s.place(s.nameBytes[s.stageOffset:], n)
			s.stageOffset += copied
			n += copied
			if s.stageOffset < len(s.nameBytes) {
				return s.buf[:n]
			}
			s.stage, s.stageOffset, s.nameBytes = stageUseCounts, 0, nil

		case stageUseCounts:
			data := uint32Bytes(region.UseCounts)
			updated, fast := s.placeArray(data, n)
			if fast != nil {
				return fast
			}
			n = updated
			if s.stageOffset < len(data) {
				return s.buf[:n]
			}
			s.stage, s.stageOffset = stageFlags, 0

		case stageFlags:
			data := uint32Bytes(region.CombinedFlags)
			updated, fast := s.placeArray(data, n)
			if fast != nil {
				return fast
			}
			n = updated
			if s.stageOffset < len(data) {
				return s.buf[:n]
			}
			s.regionIdx++
			s.stage, s.stageOffset = stageHeader, 0
		}
	}
	return s.buf[:n]
}

// place copies as much of src into s.buf[n:] as fits and returns how
// many bytes it copied.
func (s *Serializer) place(src []byte, n int) int {
	room := bufferSize - n
	if room <= 0 {
		return 0
	}
	c := len(src)
	if c > room {
		c = room
	}
	copy(s.buf[n:n+c], src[:c])
	return c
}

// placeArray advances the current stage's offset through arr, either by
// copying into s.buf (the normal path) or, when the buffer is currently
// empty and a full buffer's worth of arr remains, by returning that
// slice directly (the zero-copy fast path). The fast path's non-nil
// return should be returned from SerializeMore as-is.
func (s *Serializer) placeArray(arr []byte, n int) (int, []byte) {
	remaining := arr[s.stageOffset:]
	if n == 0 && len(remaining) >= bufferSize {
		s.stageOffset += bufferSize
		return 0, remaining[:bufferSize]
	}
	copied := s.place(remaining, n)
	s.stageOffset += copied
	return n + copied, nil
}

// namePadded returns name's UTF-8 bytes followed by zero padding out to
// the next 4-byte boundary.
func namePadded(name string) []byte {
	b := []byte(name)
	pad := namePad(len(b))
	if pad == 0 {
		return b
	}
	padded := make([]byte, len(b)+pad)
	copy(padded, b)
	return padded
}

// uint32Bytes reinterprets v as its little-endian byte representation
// without copying. It relies on the wire format's target architectures
// being little-endian, the same assumption the rest of the protocol's
// fixed-width integer encoding makes.
func uint32Bytes(v []uint32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}
