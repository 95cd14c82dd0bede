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

// fixedPredictor always predicts the same probability
type fixedPredictor struct {
	p int
}

func (f *fixedPredictor) Get() int        { return f.p }
func (f *fixedPredictor) Update(bit byte) {}

// countingPredictor adapts a single global probability, enough to check
// that encoder and decoder stay in lock-step through predictor state.
type countingPredictor struct {
	p int
}

func (c *countingPredictor) Get() int {
	return c.p
}

func (c *countingPredictor) Update(bit byte) {
	if bit != 0 {
		c.p += (65534 - c.p) >> 5
	} else {
		c.p += (1 - c.p) >> 5
	}

	if c.p < 1 {
		c.p = 1
	} else if c.p > 65534 {
		c.p = 65534
	}
}

func TestBinaryCodecRoundTrip(t *testing.T) {
	type testCase struct {
		name  string
		input []byte
	}

	testCases := []testCase{
		{name: "Empty", input: []byte{}},
		{name: "SingleByte", input: []byte{0x5A}},
		{name: "AllZero", input: make([]byte, 500)},
		{name: "AllOnes", input: bytes.Repeat([]byte{0xFF}, 500)},
		{name: "Text", input: []byte("the quick brown fox jumps over the lazy dog")},
		{
			name: "Random",
			input: func() []byte {
				rnd := rand.New(rand.NewSource(3))
				v := make([]byte, 2048)
				for i := range v {
					v[i] = byte(rnd.Intn(256))
				}
				return v
			}(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			enc, err := NewBinaryEncoder(&countingPredictor{p: 32768})

			if err != nil {
				t.Fatalf("cannot create binary encoder: %v", err)
			}

			for _, b := range tc.input {
				enc.EncodeByte(b)
			}

			enc.Dispose()

			dec, err := NewBinaryDecoder(enc.Bytes(), &countingPredictor{p: 32768})

			if err != nil {
				t.Fatalf("cannot create binary decoder: %v", err)
			}

			output := make([]byte, len(tc.input))

			for i := range output {
				output[i] = dec.DecodeByte()
			}

			if !bytes.Equal(tc.input, output) {
				t.Errorf("round-trip mismatch for %s", tc.name)
			}
		})
	}
}

func TestBinaryCodecNearCertainCost(t *testing.T) {
	// Coding N bits that the predictor is almost sure about must cost
	// no more than N/8 + 4 output bytes.
	const n = 1000
	enc, _ := NewBinaryEncoder(&fixedPredictor{p: 65534})

	for i := 0; i < n; i++ {
		enc.EncodeBit(1, 65534)
	}

	enc.Dispose()

	if len(enc.Bytes()) > n/8+4 {
		t.Errorf("near-certain coding cost %d bytes exceeds %d", len(enc.Bytes()), n/8+4)
	}

	dec, _ := NewBinaryDecoder(enc.Bytes(), &fixedPredictor{p: 65534})

	for i := 0; i < n; i++ {
		if dec.DecodeBit(65534) != 1 {
			t.Fatalf("bit %d decoded as 0", i)
		}
	}
}

func TestBinaryCodecInvalidProbability(t *testing.T) {
	for _, p := range []int{0, -1, 65535, 70000} {
		enc, _ := NewBinaryEncoder(&fixedPredictor{p: 32768})

		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("no panic for probability %d", p)
				}
			}()

			enc.EncodeBit(1, p)
		}()
	}
}
