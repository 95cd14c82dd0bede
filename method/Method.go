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

// Package method exposes the byte-to-byte compression methods built on
// the statistical core, behind one compress/decompress contract shared
// with the opaque third-party codec wrappers.
package method

import (
	"bytes"
	"encoding/binary"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Result describes the outcome of one compression call
type Result struct {
	Method         string
	OriginalSize   int64
	CompressedSize int64
	Data           []byte
	AuxSize        int64
	Duration       time.Duration
	Lossless       bool
	Metadata       map[string]string
}

// Method is the compress/decompress contract. Every method owns its
// container format: headers are produced and consumed by the method
// itself, not by a separate container layer.
type Method interface {
	// Name returns the registry name of the method
	Name() string

	// Compress encodes the data and returns the result with its
	// self-contained container bytes in Data.
	Compress(data []byte) (*Result, error)

	// Decompress decodes a container produced by Compress
	Decompress(data []byte) ([]byte, error)
}

// New creates a method instance by registry name
func New(name string) (Method, error) {
	switch strings.ToLower(name) {
	case "arithmetic":
		return NewArithmetic()
	case "ppm":
		return NewPPM(_PPM_DEFAULT_ORDER)
	case "cm":
		return NewContextMix()
	case "bitmix":
		return NewBitMix()
	case "zstd":
		return NewZstd()
	case "gzip":
		return NewGzip()
	case "s2":
		return NewS2()
	}

	return nil, errors.Errorf("method: unknown method '%s'", name)
}

// Names returns the registry names of all available methods
func Names() []string {
	return []string{"arithmetic", "ppm", "cm", "bitmix", "zstd", "gzip", "s2"}
}

// Verify checks the lossless round-trip property for the method on the
// given data.
func Verify(m Method, data []byte) error {
	res, err := m.Compress(data)

	if err != nil {
		return errors.Wrapf(err, "verify %s: compress", m.Name())
	}

	out, err := m.Decompress(res.Data)

	if err != nil {
		return errors.Wrapf(err, "verify %s: decompress", m.Name())
	}

	if !bytes.Equal(data, out) {
		return errors.Errorf("verify %s: round-trip mismatch (%d bytes in, %d bytes out)", m.Name(), len(data), len(out))
	}

	return nil
}

// sizeHeader returns the little-endian int64 original size header
func sizeHeader(n int) []byte {
	hdr := make([]byte, 8, 8+n)
	binary.LittleEndian.PutUint64(hdr, uint64(n))
	return hdr
}

// readSizeHeader splits a container into its original size and payload
func readSizeHeader(data []byte) (int64, []byte, error) {
	if len(data) < 8 {
		return 0, nil, errors.New("method: truncated container (missing size header)")
	}

	size := int64(binary.LittleEndian.Uint64(data))

	if size < 0 {
		return 0, nil, errors.Errorf("method: invalid original size %d", size)
	}

	return size, data[8:], nil
}

// newResult assembles the compress contract result
func newResult(name string, originalSize int, data []byte, start time.Time) *Result {
	return &Result{
		Method:         name,
		OriginalSize:   int64(originalSize),
		CompressedSize: int64(len(data)),
		Data:           data,
		Duration:       time.Since(start),
		Lossless:       true,
	}
}
