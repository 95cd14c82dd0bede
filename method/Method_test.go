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

package method

import (
	"bytes"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testInputs() map[string][]byte {
	identity := make([]byte, 256)

	for i := range identity {
		identity[i] = byte(i)
	}

	rnd := rand.New(rand.NewSource(42))
	random := make([]byte, 4096)

	for i := range random {
		random[i] = byte(rnd.Intn(256))
	}

	return map[string][]byte{
		"empty":       {},
		"single":      {0x42},
		"allZero":     make([]byte, 1000),
		"oneByteRun":  bytes.Repeat([]byte{0xAB}, 1000),
		"identity256": identity,
		"repetitive":  []byte(strings.Repeat("hutter prize ", 200)),
		"random":      random,
		"rescaleRun":  bytes.Repeat([]byte{0x42}, (1<<14)+10),
	}
}

func TestUniversalRoundTrip(t *testing.T) {
	for _, name := range Names() {
		m, err := New(name)
		require.NoError(t, err, "constructing %s", name)

		for inputName, input := range testInputs() {
			t.Run(name+"_"+inputName, func(t *testing.T) {
				res, err := m.Compress(input)
				require.NoError(t, err)
				require.True(t, res.Lossless)
				require.Equal(t, int64(len(input)), res.OriginalSize)
				require.Equal(t, int64(len(res.Data)), res.CompressedSize)

				out, err := m.Decompress(res.Data)
				require.NoError(t, err)
				require.True(t, bytes.Equal(input, out), "round-trip mismatch")
			})
		}
	}
}

func TestVerifyHelper(t *testing.T) {
	m, err := New("arithmetic")
	require.NoError(t, err)
	require.NoError(t, Verify(m, []byte("some data to verify")))
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		m, err := New(name)
		require.NoError(t, err)
		require.Equal(t, name, m.Name())
	}

	_, err := New("nonsense")
	require.Error(t, err)
}

func TestTruncatedContainers(t *testing.T) {
	for _, name := range []string{"arithmetic", "ppm", "cm", "bitmix"} {
		m, err := New(name)
		require.NoError(t, err)

		_, err = m.Decompress([]byte{1, 2, 3})
		require.Error(t, err, "%s accepted a truncated header", name)
	}

	// A ppm container whose order byte is missing
	m, _ := New("ppm")
	_, err := m.Decompress(sizeHeader(0))
	require.Error(t, err)
}

func TestPPMContainerCarriesOrder(t *testing.T) {
	m, err := NewPPM(6)
	require.NoError(t, err)

	res, err := m.Compress([]byte("order carried in the container"))
	require.NoError(t, err)
	require.Equal(t, byte(6), res.Data[8])
	require.Equal(t, "6", res.Metadata["order"])

	// Decompression reads the order from the stream, not from the method
	other, _ := NewPPM(2)
	out, err := other.Decompress(res.Data)
	require.NoError(t, err)
	require.Equal(t, "order carried in the container", string(out))
}

func TestTinyRunCompressesTightly(t *testing.T) {
	m, _ := New("arithmetic")
	res, err := m.Compress([]byte("aaaaaaaaaa"))
	require.NoError(t, err)

	// 8 byte header + a range payload of about a dozen bytes, 5 of them
	// flush bytes
	require.LessOrEqual(t, len(res.Data), 24, "10 identical bytes took %d bytes", len(res.Data))
}

func TestBiasedStreamNearEntropyBound(t *testing.T) {
	// P('A') = 0.5, the rest uniform over the other 255 values
	rnd := rand.New(rand.NewSource(99))
	input := make([]byte, 65536)

	for i := range input {
		if rnd.Intn(2) == 0 {
			input[i] = 'A'
		} else {
			b := byte(rnd.Intn(255))

			if b >= 'A' {
				b++
			}

			input[i] = b
		}
	}

	hist := [256]float64{}

	for _, b := range input {
		hist[b]++
	}

	entropyBits := 0.0

	for _, n := range hist {
		if n > 0 {
			p := n / float64(len(input))
			entropyBits -= float64(len(input)) * p * math.Log2(p)
		}
	}

	bound := entropyBits / 8
	m, _ := New("arithmetic")
	res, err := m.Compress(input)
	require.NoError(t, err)

	payload := float64(res.CompressedSize)
	require.LessOrEqual(t, payload, bound*1.05, "compressed %d bytes, entropy bound %.0f", res.CompressedSize, bound)

	out, err := m.Decompress(res.Data)
	require.NoError(t, err)
	require.True(t, bytes.Equal(input, out))
}

func TestPeriodicPatternThroughContextMix(t *testing.T) {
	pattern := []byte("0123456789ABCDEF")
	input := bytes.Repeat(pattern, 1024)
	m, _ := New("cm")

	res, err := m.Compress(input)
	require.NoError(t, err)
	require.LessOrEqual(t, len(res.Data), 200, "16 KiB periodic input took %d bytes", len(res.Data))

	out, err := m.Decompress(res.Data)
	require.NoError(t, err)
	require.True(t, bytes.Equal(input, out))
}

func TestCompressedTextIsSmaller(t *testing.T) {
	input := []byte(strings.Repeat("it is a truth universally acknowledged ", 100))

	for _, name := range []string{"arithmetic", "ppm", "cm", "bitmix"} {
		m, err := New(name)
		require.NoError(t, err)

		res, err := m.Compress(input)
		require.NoError(t, err)
		require.Less(t, len(res.Data), len(input), "%s did not compress repetitive text", name)
	}
}
