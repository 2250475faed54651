package schem

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
)

// PackCompression selects the codec applied to a pack's content section.
type PackCompression uint8

const (
	PackCompNone PackCompression = 0
	PackCompZlib PackCompression = 1
	PackCompZstd PackCompression = 2
)

// PackLayout selects how entry payloads are stored.
type PackLayout uint8

const (
	// LayoutRaw stores every payload as-is.
	LayoutRaw PackLayout = 0
	// LayoutCDC splits payloads with content-defined chunking and stores
	// each distinct chunk once.
	LayoutCDC PackLayout = 1
)

const (
	packMagic   = "SCHMPACK"
	packVersion = 1

	cdcTarget = 4096
	cdcMin    = 1024
	cdcMax    = 16384
)

// PackEntry is one named schematic file inside a pack.
type PackEntry struct {
	Name string
	Data []byte
}

// Pack bundles several schematic files into one container.
type Pack struct {
	Entries []PackEntry
}

// Marshal encodes the pack with the raw layout.
func (p *Pack) Marshal(comp PackCompression) ([]byte, error) {
	return p.MarshalEx(LayoutRaw, comp)
}

// MarshalEx encodes the pack with the given layout and compression.
func (p *Pack) MarshalEx(layout PackLayout, comp PackCompression) ([]byte, error) {
	seen := make(map[string]struct{}, len(p.Entries))
	for _, e := range p.Entries {
		if e.Name == "" {
			return nil, fmt.Errorf("pack entry without a name")
		}
		if _, dup := seen[e.Name]; dup {
			return nil, fmt.Errorf("duplicate pack entry %q", e.Name)
		}
		seen[e.Name] = struct{}{}
		if len(e.Data) > math.MaxInt32 {
			return nil, fmt.Errorf("pack entry %q too large", e.Name)
		}
	}

	content := NewWriter()
	content.U8(int(layout))
	content.Zigzag(int32(len(p.Entries)))
	switch layout {
	case LayoutRaw:
		for _, e := range p.Entries {
			writeEntryHeader(content, e)
			content.Bytes(e.Data)
		}
	case LayoutCDC:
		dict, seqs := buildCDCIndex(p.Entries, cdcTarget, cdcMin, cdcMax)
		content.Zigzag(int32(len(dict)))
		for _, blk := range dict {
			content.Bytes(blk)
		}
		for i, e := range p.Entries {
			writeEntryHeader(content, e)
			content.Zigzag(int32(len(e.Data)))
			content.Zigzag(int32(len(seqs[i])))
			for _, idx := range seqs[i] {
				content.Zigzag(int32(idx))
			}
		}
	default:
		return nil, fmt.Errorf("unsupported pack layout %d", layout)
	}

	body, err := compressContent(content.Finalize(), comp)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	out.WriteString(packMagic)
	_ = binary.Write(&out, binary.LittleEndian, uint8(packVersion))
	_ = binary.Write(&out, binary.LittleEndian, uint8(comp))
	_, _ = out.Write(body)
	return out.Bytes(), nil
}

func writeEntryHeader(w *Writer, e PackEntry) {
	w.Str(e.Name)
	var sum [8]byte
	binary.LittleEndian.PutUint64(sum[:], xxhash.Sum64(e.Data))
	w.Raw(sum[:])
}

// UnmarshalPack parses a pack and verifies every entry checksum.
func UnmarshalPack(data []byte) (*Pack, PackCompression, error) {
	hdr := len(packMagic) + 2
	if len(data) < hdr || string(data[:len(packMagic)]) != packMagic {
		return nil, 0, fmt.Errorf("not a schematic pack: %w", ErrMalformed)
	}
	if v := data[len(packMagic)]; v != packVersion {
		return nil, 0, fmt.Errorf("pack version %d: %w", v, ErrMalformed)
	}
	comp := PackCompression(data[len(packMagic)+1])
	content, err := decompressContent(data[hdr:], comp)
	if err != nil {
		return nil, 0, err
	}

	r := NewReader(content)
	lb, err := r.U8()
	if err != nil {
		return nil, 0, err
	}
	n, err := r.Zigzag()
	if err != nil {
		return nil, 0, err
	}
	if n < 0 || int(n) > r.Remaining() {
		return nil, 0, fmt.Errorf("entry count %d: %w", n, ErrMalformed)
	}

	pack := &Pack{Entries: make([]PackEntry, 0, n)}
	switch PackLayout(lb) {
	case LayoutRaw:
		for i := int32(0); i < n; i++ {
			name, sum, err := readEntryHeader(r)
			if err != nil {
				return nil, 0, err
			}
			payload, err := r.Bytes()
			if err != nil {
				return nil, 0, err
			}
			e, err := checkedEntry(name, sum, payload)
			if err != nil {
				return nil, 0, err
			}
			pack.Entries = append(pack.Entries, e)
		}
	case LayoutCDC:
		nBlocks, err := r.Zigzag()
		if err != nil {
			return nil, 0, err
		}
		if nBlocks < 0 || int(nBlocks) > r.Remaining() {
			return nil, 0, fmt.Errorf("block count %d: %w", nBlocks, ErrMalformed)
		}
		blocks := make([][]byte, nBlocks)
		for i := range blocks {
			if blocks[i], err = r.Bytes(); err != nil {
				return nil, 0, err
			}
		}
		for i := int32(0); i < n; i++ {
			name, sum, err := readEntryHeader(r)
			if err != nil {
				return nil, 0, err
			}
			rawLen, err := r.Zigzag()
			if err != nil {
				return nil, 0, err
			}
			seqLen, err := r.Zigzag()
			if err != nil {
				return nil, 0, err
			}
			if rawLen < 0 || seqLen < 0 {
				return nil, 0, fmt.Errorf("entry %q: bad lengths: %w", name, ErrMalformed)
			}
			var payload []byte
			for j := int32(0); j < seqLen; j++ {
				idx, err := r.Zigzag()
				if err != nil {
					return nil, 0, err
				}
				if idx < 0 || idx >= nBlocks {
					return nil, 0, fmt.Errorf("entry %q: block index %d: %w", name, idx, ErrMalformed)
				}
				if len(payload)+len(blocks[idx]) > int(rawLen) {
					return nil, 0, fmt.Errorf("entry %q: chunks exceed %d bytes: %w", name, rawLen, ErrMalformed)
				}
				payload = append(payload, blocks[idx]...)
			}
			if len(payload) != int(rawLen) {
				return nil, 0, fmt.Errorf("entry %q: got %d bytes, want %d: %w", name, len(payload), rawLen, ErrMalformed)
			}
			e, err := checkedEntry(name, sum, payload)
			if err != nil {
				return nil, 0, err
			}
			pack.Entries = append(pack.Entries, e)
		}
	default:
		return nil, 0, fmt.Errorf("pack layout %d: %w", lb, ErrMalformed)
	}
	return pack, comp, nil
}

func readEntryHeader(r *Reader) (string, uint64, error) {
	name, err := r.Str()
	if err != nil {
		return "", 0, err
	}
	sum, err := r.Raw(8)
	if err != nil {
		return "", 0, err
	}
	return name, binary.LittleEndian.Uint64(sum), nil
}

func checkedEntry(name string, sum uint64, payload []byte) (PackEntry, error) {
	if got := xxhash.Sum64(payload); got != sum {
		return PackEntry{}, fmt.Errorf("entry %q: checksum %016x, want %016x: %w", name, got, sum, ErrMalformed)
	}
	data := make([]byte, len(payload))
	copy(data, payload)
	return PackEntry{Name: name, Data: data}, nil
}

func compressContent(b []byte, comp PackCompression) ([]byte, error) {
	switch comp {
	case PackCompNone:
		return b, nil
	case PackCompZlib:
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(b); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case PackCompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(b, nil), nil
	default:
		return nil, fmt.Errorf("unsupported pack compression %d", comp)
	}
}

func decompressContent(b []byte, comp PackCompression) ([]byte, error) {
	switch comp {
	case PackCompNone:
		return b, nil
	case PackCompZlib:
		zr, err := zlib.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case PackCompZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(b, nil)
	default:
		return nil, fmt.Errorf("pack compression %d: %w", comp, ErrMalformed)
	}
}

// gearTable derives the rolling-hash table deterministically from xxhash.
func gearTable() [256]uint64 {
	var gear [256]uint64
	seed := xxhash.Sum64String("schempack-cdc-gear")
	var b [8]byte
	for i := range gear {
		binary.LittleEndian.PutUint64(b[:], seed+uint64(i)*0x9E3779B185EBCA87)
		v := xxhash.Sum64(b[:])
		if v == 0 {
			v = 0x9E3779B185EBCA87
		}
		gear[i] = v
	}
	return gear
}

// buildCDCIndex cuts every payload at content-defined boundaries and
// returns the distinct chunks plus, per entry, the chunk indices that
// rebuild it. All-air chunk records repeat across schematics, so this
// dedupes well.
func buildCDCIndex(entries []PackEntry, target, minSz, maxSz int) ([][]byte, [][]int) {
	gear := gearTable()
	mask := uint64(1)<<uint(math.Round(math.Log2(float64(target)))) - 1

	var blocks [][]byte
	index := make(map[uint64][]int)
	add := func(b []byte) int {
		h := xxhash.Sum64(b)
		for _, idx := range index[h] {
			if bytes.Equal(blocks[idx], b) {
				return idx
			}
		}
		idx := len(blocks)
		blocks = append(blocks, append([]byte(nil), b...))
		index[h] = append(index[h], idx)
		return idx
	}

	seqs := make([][]int, len(entries))
	for i, e := range entries {
		data := e.Data
		start := 0
		var h uint64
		for pos := range data {
			h = h<<1 + gear[data[pos]]
			size := pos - start + 1
			if size < minSz {
				continue
			}
			if h&mask == 0 || size >= maxSz {
				seqs[i] = append(seqs[i], add(data[start:pos+1]))
				start = pos + 1
				h = 0
			}
		}
		if start < len(data) {
			seqs[i] = append(seqs[i], add(data[start:]))
		}
	}
	return blocks, seqs
}
