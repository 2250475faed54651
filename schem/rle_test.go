package schem

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeRLE_Empty(t *testing.T) {
	if got := EncodeRLE(nil); len(got) != 0 {
		t.Fatalf("got % x", got)
	}
	out, err := DecodeRLE(nil)
	if err != nil || len(out) != 0 {
		t.Fatalf("DecodeRLE(nil) = %v, %v", out, err)
	}
}

func TestEncodeRLE_Single(t *testing.T) {
	if got := EncodeRLE([]uint8{61}); !bytes.Equal(got, []byte{1, 61}) {
		t.Fatalf("got % x", got)
	}
	// ids >= 128 take two varint bytes
	if got := EncodeRLE([]uint8{200}); !bytes.Equal(got, []byte{1, 0xC8, 0x01}) {
		t.Fatalf("got % x", got)
	}
}

func TestEncodeRLE_Runs(t *testing.T) {
	in := []uint8{0, 0, 0, 51, 51, 0, 97}
	want := []byte{3, 0, 2, 51, 1, 0, 1, 97}
	if got := EncodeRLE(in); !bytes.Equal(got, want) {
		t.Fatalf("got % x want % x", got, want)
	}
}

func TestEncodeRLE_AirChunk(t *testing.T) {
	got := EncodeRLE(make([]uint8, ChunkVolume))
	if want := []byte{0x80, 0x80, 0x02, 0x00}; !bytes.Equal(got, want) {
		t.Fatalf("got % x want % x", got, want)
	}
}

func TestRLE_Roundtrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for n := 0; n < 200; n++ {
		in := make([]uint8, r.Intn(3000))
		v := uint8(r.Intn(4))
		for i := range in {
			if r.Intn(10) == 0 {
				v = uint8(r.Intn(256))
			}
			in[i] = v
		}
		out, err := DecodeRLE(EncodeRLE(in))
		if err != nil {
			t.Fatalf("DecodeRLE: %v", err)
		}
		if diff := cmp.Diff(in, out); diff != "" {
			t.Fatalf("roundtrip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestDecodeRLE_Malformed(t *testing.T) {
	cases := map[string][]byte{
		"missing value": {0x03},
		"zero run":      {0x00, 0x05},
		"id too large":  {0x01, 0x80, 0x02},
	}
	for name, data := range cases {
		if _, err := DecodeRLE(data); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestDecodeRLEN_Length(t *testing.T) {
	if _, err := DecodeRLEN([]byte{4, 1}, 4); err != nil {
		t.Fatalf("exact length: %v", err)
	}
	if _, err := DecodeRLEN([]byte{3, 1}, 4); !errors.Is(err, ErrMalformed) {
		t.Fatalf("short stream: %v", err)
	}
	if _, err := DecodeRLEN([]byte{5, 1}, 4); !errors.Is(err, ErrMalformed) {
		t.Fatalf("long stream: %v", err)
	}
}
