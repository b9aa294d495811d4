package pagewire

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/memscope/memscope/pkg/pageinfo"
)

// Reader incrementally decodes a pagewire byte stream back into
// Snapshots. It tolerates being fed arbitrarily small or oddly-aligned
// chunks — including a single byte at a time — and keeps whatever
// partial data it has seen across calls until a full Snapshot is
// available.
type Reader struct {
	buf        []byte
	haveLength bool
	bodyLength uint64
}

// NewReader returns an empty Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Feed appends chunk to the Reader's internal buffer and decodes as many
// complete Snapshots as are now available, returning them in the order
// they appeared on the wire. It is safe to call Feed again after it
// returns an empty slice; decoding simply resumes where it left off.
func (r *Reader) Feed(chunk []byte) ([]*pageinfo.Snapshot, error) {
	r.buf = append(r.buf, chunk...)

	var done []*pageinfo.Snapshot
	for {
		if !r.haveLength {
			if len(r.buf) < lengthPrefixBytes {
				break
			}
			r.bodyLength = binary.LittleEndian.Uint64(r.buf[:lengthPrefixBytes])
			r.haveLength = true
		}

		total := lengthPrefixBytes + int(r.bodyLength)
		if len(r.buf) < total {
			break
		}

		snap, consumed, err := decodeBody(r.buf[lengthPrefixBytes:total])
		if err != nil {
			return done, errors.Wrap(err, "pagewire: failed to decode snapshot body")
		}
		if consumed != int(r.bodyLength) {
			return done, errors.Errorf("pagewire: decoded %d bytes but body_length declared %d", consumed, r.bodyLength)
		}

		done = append(done, snap)
		r.buf = append([]byte(nil), r.buf[total:]...)
		r.haveLength = false
	}
	return done, nil
}

// decodeBody parses body as a sequence of Regions, returning the
// Snapshot built from them and the number of bytes consumed. A region
// that is cut off by the end of body is an error.
func decodeBody(body []byte) (*pageinfo.Snapshot, int, error) {
	snap := &pageinfo.Snapshot{}
	offset := 0

	for offset < len(body) {
		if offset+regionHeaderBytes > len(body) {
			return nil, offset, errors.New("truncated region header")
		}
		start := binary.LittleEndian.Uint64(body[offset:])
		end := binary.LittleEndian.Uint64(body[offset+8:])
		nameLen := binary.LittleEndian.Uint32(body[offset+16:])
		offset += regionHeaderBytes

		if end < start {
			return nil, offset, errors.Errorf("region end %#x before start %#x", end, start)
		}

		pad := namePad(int(nameLen))
		need := int(nameLen) + pad
		if offset+need > len(body) {
			return nil, offset, errors.New("truncated region name")
		}
		name := string(body[offset : offset+int(nameLen)])
		offset += need

		pageCount := int((end - start) / pageinfo.PageSize())
		arrBytes := pageCount * 4
		if offset+2*arrBytes > len(body) {
			return nil, offset, errors.New("truncated page arrays")
		}

		useCounts := make([]uint32, pageCount)
		for i := 0; i < pageCount; i++ {
			useCounts[i] = binary.LittleEndian.Uint32(body[offset+i*4:])
		}
		offset += arrBytes

		flags := make([]uint32, pageCount)
		for i := 0; i < pageCount; i++ {
			flags[i] = binary.LittleEndian.Uint32(body[offset+i*4:])
		}
		offset += arrBytes

		snap.Regions = append(snap.Regions, &pageinfo.MappedRegion{
			Start:         start,
			End:           end,
			BackingFile:   name,
			UseCounts:     useCounts,
			CombinedFlags: flags,
		})
	}
	return snap, offset, nil
}
