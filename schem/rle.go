package schem

import (
	"fmt"
	"math"
)

// EncodeRLE run-length encodes ids as consecutive varint(count) varint(value) pairs.
func EncodeRLE(ids []uint8) []byte {
	if len(ids) == 0 {
		return []byte{}
	}
	out := make([]byte, 0, 16)
	cur := ids[0]
	run := uint32(1)
	for _, v := range ids[1:] {
		if v == cur {
			run++
			continue
		}
		out = appendUVarint(out, run)
		out = appendUVarint(out, uint32(cur))
		cur = v
		run = 1
	}
	out = appendUVarint(out, run)
	out = appendUVarint(out, uint32(cur))
	return out
}

// DecodeRLE expands a run stream produced by EncodeRLE.
func DecodeRLE(data []byte) ([]uint8, error) {
	return decodeRLE(data, math.MaxInt)
}

// DecodeRLEN expands a run stream that must hold exactly n ids.
func DecodeRLEN(data []byte, n int) ([]uint8, error) {
	out, err := decodeRLE(data, n)
	if err != nil {
		return nil, err
	}
	if len(out) != n {
		return nil, fmt.Errorf("run stream holds %d ids, want %d: %w", len(out), n, ErrMalformed)
	}
	return out, nil
}

func decodeRLE(data []byte, limit int) ([]uint8, error) {
	r := NewReader(data)
	out := make([]uint8, 0, len(data))
	for r.Remaining() > 0 {
		count, err := r.Varint()
		if err != nil {
			return nil, err
		}
		value, err := r.Varint()
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, fmt.Errorf("zero-length run: %w", ErrMalformed)
		}
		if value > math.MaxUint8 {
			return nil, fmt.Errorf("block id %d out of range: %w", value, ErrMalformed)
		}
		if uint64(len(out))+uint64(count) > uint64(limit) {
			return nil, fmt.Errorf("run stream exceeds %d ids: %w", limit, ErrMalformed)
		}
		for i := uint32(0); i < count; i++ {
			out = append(out, uint8(value))
		}
	}
	return out, nil
}
