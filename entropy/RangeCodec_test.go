/*
Copyright 2011-2026 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package entropy

import (
	"bytes"
	"math/rand"
	"testing"
)

// staticModel codes every byte with a fixed skewed distribution so the
// coder is exercised independently of any adaptive model.
type staticModel struct {
	freqs [256]int
	cum   [257]int
}

func newStaticModel(hot byte, hotFreq int) *staticModel {
	m := &staticModel{}

	for i := range m.freqs {
		m.freqs[i] = 1
	}

	m.freqs[hot] = hotFreq

	for i := 0; i < 256; i++ {
		m.cum[i+1] = m.cum[i] + m.freqs[i]
	}

	return m
}

func (m *staticModel) total() int {
	return m.cum[256]
}

func (m *staticModel) symbol(v int) (byte, int, int) {
	s := 0

	for m.cum[s+1] <= v {
		s++
	}

	return byte(s), m.cum[s], m.freqs[s]
}

func rangeRoundTrip(t *testing.T, input []byte, model *staticModel) {
	t.Helper()
	enc, err := NewRangeEncoder()

	if err != nil {
		t.Fatalf("cannot create range encoder: %v", err)
	}

	for _, b := range input {
		enc.Encode(model.cum[b], model.freqs[b], model.total())
	}

	enc.Dispose()

	dec, err := NewRangeDecoder(enc.Bytes())

	if err != nil {
		t.Fatalf("cannot create range decoder: %v", err)
	}

	output := make([]byte, len(input))

	for i := range output {
		v := dec.GetFreq(model.total())
		sym, cum, freq := model.symbol(v)
		dec.Update(cum, freq)
		output[i] = sym
	}

	if !bytes.Equal(input, output) {
		t.Errorf("round-trip mismatch: input %v, output %v", input, output)
	}
}

func TestRangeCodecRoundTrip(t *testing.T) {
	type testCase struct {
		name  string
		input []byte
	}

	testCases := []testCase{
		{
			name:  "Empty",
			input: []byte{},
		},
		{
			name:  "SingleByte",
			input: []byte{42},
		},
		{
			name:  "AllSame",
			input: bytes.Repeat([]byte{7}, 300),
		},
		{
			name: "AllByteValues",
			input: func() []byte {
				v := make([]byte, 256)
				for i := range v {
					v[i] = byte(i)
				}
				return v
			}(),
		},
		{
			name: "Random",
			input: func() []byte {
				rnd := rand.New(rand.NewSource(1))
				v := make([]byte, 4096)
				for i := range v {
					v[i] = byte(rnd.Intn(256))
				}
				return v
			}(),
		},
		{
			name:  "HotSymbolRun",
			input: bytes.Repeat([]byte{0xFF}, 2000),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rangeRoundTrip(t, tc.input, newStaticModel(0xFF, 10000))
			rangeRoundTrip(t, tc.input, newStaticModel(0, 255))
		})
	}
}

func TestRangeEncoderNormalisationInvariant(t *testing.T) {
	enc, _ := NewRangeEncoder()
	model := newStaticModel('A', 60000)
	rnd := rand.New(rand.NewSource(7))

	for i := 0; i < 10000; i++ {
		b := byte(rnd.Intn(256))
		enc.Encode(model.cum[b], model.freqs[b], model.total())

		if enc.rng < _RANGE_TOP {
			t.Fatalf("range %x below TOP after encode %d", enc.rng, i)
		}
	}
}

func TestRangeEncoderInvalidParameters(t *testing.T) {
	type testCase struct {
		name    string
		cumFreq int
		freq    int
		total   int
	}

	testCases := []testCase{
		{name: "ZeroFreq", cumFreq: 0, freq: 0, total: 256},
		{name: "SlotPastTotal", cumFreq: 200, freq: 100, total: 256},
		{name: "TotalTooLarge", cumFreq: 0, freq: 1, total: 1 << 16},
		{name: "NegativeCum", cumFreq: -1, freq: 1, total: 256},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			enc, _ := NewRangeEncoder()

			defer func() {
				if recover() == nil {
					t.Errorf("no panic for invalid slot (cum=%d, freq=%d, total=%d)", tc.cumFreq, tc.freq, tc.total)
				}
			}()

			enc.Encode(tc.cumFreq, tc.freq, tc.total)
		})
	}
}

// carryRefEncoder re-implements shiftLow with 32 bit arithmetic and an
// explicit carry flag. The 64 bit formulation must emit identical bytes.
type carryRefEncoder struct {
	low       uint32
	carry     bool
	cache     byte
	cacheSize int
	out       []byte
}

func (e *carryRefEncoder) add(delta uint32) {
	old := e.low
	e.low += delta

	if e.low < old {
		e.carry = true
	}
}

func (e *carryRefEncoder) shiftLow() {
	if e.carry || byte(e.low>>24) != 0xFF {
		c := byte(0)

		if e.carry {
			c = 1
		}

		e.out = append(e.out, e.cache+c)

		for ; e.cacheSize > 0; e.cacheSize-- {
			e.out = append(e.out, 0xFF+c)
		}

		e.cache = byte(e.low >> 24)
	} else {
		e.cacheSize++
	}

	e.low <<= 8
	e.carry = false
}

func TestRangeEncoderCarryEquivalence(t *testing.T) {
	enc, _ := NewRangeEncoder()
	ref := &carryRefEncoder{}
	model := newStaticModel(0xFF, 30000)
	rnd := rand.New(rand.NewSource(11))
	rng := uint32(0xFFFFFFFF)

	for i := 0; i < 20000; i++ {
		b := byte(rnd.Intn(256))

		if i%3 != 0 {
			b = 0xFF // bias toward the hot symbol to provoke carries
		}

		enc.Encode(model.cum[b], model.freqs[b], model.total())

		// Drive the reference with the identical interval arithmetic
		r := rng / uint32(model.total())
		ref.add(uint32(model.cum[b]) * r)
		rng = r * uint32(model.freqs[b])

		for rng < _RANGE_TOP {
			ref.shiftLow()
			rng <<= 8
		}
	}

	enc.Dispose()

	for i := 0; i < _RANGE_FLUSH_BYTES; i++ {
		ref.shiftLow()
	}

	if !bytes.Equal(enc.Bytes(), ref.out) {
		t.Errorf("64 bit and 32 bit carry formulations diverge (%d vs %d bytes)", len(enc.Bytes()), len(ref.out))
	}
}
