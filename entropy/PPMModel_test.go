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
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"
)

func ppmRoundTrip(t *testing.T, input []byte, order int) (*PPMModel, *PPMModel) {
	t.Helper()
	encModel, err := NewPPMModel(order)

	if err != nil {
		t.Fatalf("cannot create PPM model: %v", err)
	}

	enc, _ := NewRangeEncoder()

	for _, b := range input {
		encModel.Encode(enc, b)
	}

	enc.Dispose()

	decModel, _ := NewPPMModel(order)
	dec, _ := NewRangeDecoder(enc.Bytes())
	output := make([]byte, len(input))

	for i := range output {
		sym, err := decModel.Decode(dec)

		if err != nil {
			t.Fatalf("decode error at %d: %v", i, err)
		}

		output[i] = sym
	}

	if !bytes.Equal(input, output) {
		t.Fatalf("round-trip mismatch (order %d, %d bytes)", order, len(input))
	}

	return encModel, decModel
}

func TestPPMModelRoundTrip(t *testing.T) {
	type testCase struct {
		name  string
		input []byte
	}

	testCases := []testCase{
		{name: "Empty", input: []byte{}},
		{name: "SingleByte", input: []byte{9}},
		{name: "AllSame", input: bytes.Repeat([]byte{'Z'}, 400)},
		{name: "RepeatingPattern", input: []byte(strings.Repeat("ABC", 100))},
		{name: "Text", input: []byte(strings.Repeat("the quick brown fox ", 40))},
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
				rnd := rand.New(rand.NewSource(17))
				v := make([]byte, 3000)
				for i := range v {
					v[i] = byte(rnd.Intn(64))
				}
				return v
			}(),
		},
		{name: "RescaleAdversarial", input: bytes.Repeat([]byte{0x42}, (1<<14)+10)},
	}

	for _, tc := range testCases {
		for _, order := range []int{0, 1, 3, 5} {
			t.Run(fmt.Sprintf("%s_Order%d", tc.name, order), func(t *testing.T) {
				ppmRoundTrip(t, tc.input, order)
			})
		}
	}
}

func TestPPMOrder0TableCoversAllSymbols(t *testing.T) {
	input := make([]byte, 256)

	for i := range input {
		input[i] = byte(i)
	}

	encModel, decModel := ppmRoundTrip(t, input, 3)

	for _, m := range []*PPMModel{encModel, decModel} {
		ctx := m.tables[0][0]

		if ctx == nil {
			t.Fatal("order-0 table missing")
		}

		if len(ctx.entries) != 256 {
			t.Fatalf("order-0 table has %d symbols, want 256", len(ctx.entries))
		}
	}
}

func TestPPMContextTableInvariants(t *testing.T) {
	m, _ := NewPPMModel(2)
	rnd := rand.New(rand.NewSource(23))

	for i := 0; i < 60000; i++ {
		m.UpdateModel(byte(rnd.Intn(8)))
	}

	for o, table := range m.tables {
		for _, ctx := range table {
			total := 0
			last := -1

			for _, e := range ctx.entries {
				if int(e.sym) <= last {
					t.Fatalf("order %d: symbols not strictly ascending", o)
				}

				if e.freq < 1 {
					t.Fatalf("order %d: frequency %d below 1", o, e.freq)
				}

				last = int(e.sym)
				total += e.freq
			}

			if total != ctx.total {
				t.Fatalf("order %d: total %d != sum %d", o, ctx.total, total)
			}

			if total > _PPM_RESCALE_THRESHOLD {
				t.Fatalf("order %d: total %d above rescale threshold", o, total)
			}
		}
	}
}

func TestPPMPredictDistributionSumsToOne(t *testing.T) {
	m, _ := NewPPMModel(4)
	probs := make([]float64, 256)
	inputs := []byte(strings.Repeat("compression ", 30))

	for i, b := range inputs {
		m.PredictDistribution(probs)
		sum := 0.0

		for _, p := range probs {
			if p < 0 {
				t.Fatalf("negative probability at step %d", i)
			}

			sum += p
		}

		if math.Abs(sum-1) > 1e-4 {
			t.Fatalf("distribution sums to %v at step %d", sum, i)
		}

		m.UpdateModel(b)
	}
}

func TestPPMPredictionDoesNotContaminateCoding(t *testing.T) {
	// The distribution extraction path uses its own exclusion bitmap, so
	// interleaving it on the encoder side only must not desynchronize the
	// decoder.
	input := []byte(strings.Repeat("abracadabra ", 50))
	encModel, _ := NewPPMModel(3)
	enc, _ := NewRangeEncoder()
	probs := make([]float64, 256)

	for _, b := range input {
		encModel.PredictDistribution(probs)
		encModel.Encode(enc, b)
	}

	enc.Dispose()

	decModel, _ := NewPPMModel(3)
	dec, _ := NewRangeDecoder(enc.Bytes())
	output := make([]byte, len(input))

	for i := range output {
		sym, err := decModel.Decode(dec)

		if err != nil {
			t.Fatalf("decode error: %v", err)
		}

		output[i] = sym
	}

	if !bytes.Equal(input, output) {
		t.Errorf("prediction interleaving desynchronized the decoder")
	}
}

func TestPPMModelInvalidOrder(t *testing.T) {
	if _, err := NewPPMModel(-1); err == nil {
		t.Error("no error for negative order")
	}

	if _, err := NewPPMModel(17); err == nil {
		t.Error("no error for oversized order")
	}
}
