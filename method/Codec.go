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
	"io"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Opaque byte-to-byte wrappers over third-party codecs, implementing the
// same compress/decompress contract as the core methods. Their containers
// are the codec's own format: both zstd and gzip carry the original size
// internally and s2 blocks are self-describing, so no extra header is
// added.

// Zstd wraps the klauspost zstd implementation
type Zstd struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewZstd creates a new instance of Zstd
func NewZstd() (*Zstd, error) {
	enc, err := zstd.NewWriter(nil)

	if err != nil {
		return nil, errors.Wrap(err, "zstd: create encoder")
	}

	dec, err := zstd.NewReader(nil)

	if err != nil {
		return nil, errors.Wrap(err, "zstd: create decoder")
	}

	return &Zstd{enc: enc, dec: dec}, nil
}

// Name returns the registry name of the method
func (this *Zstd) Name() string {
	return "zstd"
}

// Compress encodes the data with zstd
func (this *Zstd) Compress(data []byte) (*Result, error) {
	start := time.Now()
	out := this.enc.EncodeAll(data, nil)
	return newResult(this.Name(), len(data), out, start), nil
}

// Decompress reverses Compress
func (this *Zstd) Decompress(data []byte) ([]byte, error) {
	out, err := this.dec.DecodeAll(data, nil)

	if err != nil {
		return nil, errors.Wrap(err, "zstd: decompress")
	}

	return out, nil
}

// Gzip wraps the klauspost gzip implementation
type Gzip struct {
}

// NewGzip creates a new instance of Gzip
func NewGzip() (*Gzip, error) {
	return &Gzip{}, nil
}

// Name returns the registry name of the method
func (this *Gzip) Name() string {
	return "gzip"
}

// Compress encodes the data with gzip
func (this *Gzip) Compress(data []byte) (*Result, error) {
	start := time.Now()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, errors.Wrap(err, "gzip: compress")
	}

	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "gzip: compress")
	}

	return newResult(this.Name(), len(data), buf.Bytes(), start), nil
}

// Decompress reverses Compress
func (this *Gzip) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))

	if err != nil {
		return nil, errors.Wrap(err, "gzip: decompress")
	}

	defer r.Close()
	out, err := io.ReadAll(r)

	if err != nil {
		return nil, errors.Wrap(err, "gzip: decompress")
	}

	return out, nil
}

// S2 wraps the klauspost s2 block format
type S2 struct {
}

// NewS2 creates a new instance of S2
func NewS2() (*S2, error) {
	return &S2{}, nil
}

// Name returns the registry name of the method
func (this *S2) Name() string {
	return "s2"
}

// Compress encodes the data as one s2 block
func (this *S2) Compress(data []byte) (*Result, error) {
	start := time.Now()
	out := s2.Encode(nil, data)
	return newResult(this.Name(), len(data), out, start), nil
}

// Decompress reverses Compress
func (this *S2) Decompress(data []byte) ([]byte, error) {
	out, err := s2.Decode(nil, data)

	if err != nil {
		return nil, errors.Wrap(err, "s2: decompress")
	}

	return out, nil
}
