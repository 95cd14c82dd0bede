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

import "fmt"

// Code based on the carry-propagating range coder by Dmitry Subbotin with
// the cache/cacheSize carry technique popularized by Michael Schindler,
// itself derived from the algorithm described by G.N.N Martin in his
// seminal article in 1979.
// [G.N.N. Martin on the Data Recording Conference, Southampton, 1979]

const (
	_RANGE_TOP         = uint32(1) << 24
	_RANGE_MAX_TOTAL   = 1 << 16
	_RANGE_FLUSH_BYTES = 5
)

// RangeEncoder is a byte oriented, symbol level range encoder. Symbols are
// provided as (cumFreq, freq, total) triples against an arbitrary caller
// owned frequency model. The encoded bytes accumulate in an in-memory sink.
type RangeEncoder struct {
	low       uint64
	rng       uint32
	cache     byte
	cacheSize int
	out       []byte
}

// NewRangeEncoder creates a new instance of RangeEncoder
func NewRangeEncoder() (*RangeEncoder, error) {
	this := &RangeEncoder{}
	this.low = 0
	this.rng = 0xFFFFFFFF
	this.cache = 0
	this.cacheSize = 0
	this.out = make([]byte, 0, 64)
	return this, nil
}

// Encode narrows the interval to the symbol slot [cumFreq, cumFreq+freq)
// out of total. The triple must satisfy freq > 0, cumFreq+freq <= total and
// total < 65536. Violations are programmer errors and panic.
func (this *RangeEncoder) Encode(cumFreq, freq, total int) {
	if freq <= 0 || cumFreq < 0 || cumFreq+freq > total {
		panic(fmt.Errorf("Range codec: invalid slot (cum=%d, freq=%d, total=%d)", cumFreq, freq, total))
	}

	if total >= _RANGE_MAX_TOTAL {
		panic(fmt.Errorf("Range codec: total %d exceeds %d", total, _RANGE_MAX_TOTAL-1))
	}

	r := this.rng / uint32(total)
	this.low += uint64(cumFreq) * uint64(r)
	this.rng = r * uint32(freq)

	for this.rng < _RANGE_TOP {
		this.shiftLow()
		this.rng <<= 8
	}
}

// shiftLow emits the top byte of low unless a later carry could still bump
// it. A pending 0xFF run is counted in cacheSize and flushed with the carry
// once it resolves.
func (this *RangeEncoder) shiftLow() {
	carry := byte(this.low >> 32)

	if carry != 0 || byte(this.low>>24) != 0xFF {
		this.out = append(this.out, this.cache+carry)

		for ; this.cacheSize > 0; this.cacheSize-- {
			this.out = append(this.out, 0xFF+carry)
		}

		this.cache = byte(this.low >> 24)
	} else {
		this.cacheSize++
	}

	this.low = (this.low << 8) & 0xFFFFFFFF
}

// Dispose flushes the remaining state of the interval. It must be called
// exactly once, after the last symbol. It emits 5 bytes.
func (this *RangeEncoder) Dispose() {
	for i := 0; i < _RANGE_FLUSH_BYTES; i++ {
		this.shiftLow()
	}
}

// Bytes returns the encoded stream
func (this *RangeEncoder) Bytes() []byte {
	return this.out
}

// RangeDecoder is the decoder side of RangeEncoder. It consumes the bytes
// produced by an encoder driven with the identical model state.
type RangeDecoder struct {
	low  uint32
	code uint32
	rng  uint32
	r    uint32
	buf  []byte
	pos  int
}

// NewRangeDecoder creates a new instance of RangeDecoder over the given
// encoded bytes. It primes the code value with 5 bytes.
func NewRangeDecoder(data []byte) (*RangeDecoder, error) {
	this := &RangeDecoder{}
	this.rng = 0xFFFFFFFF
	this.buf = data

	for i := 0; i < _RANGE_FLUSH_BYTES; i++ {
		this.code = (this.code << 8) | uint32(this.readByte())
	}

	return this, nil
}

// readByte returns the next input byte, or 0 past end of input.
func (this *RangeDecoder) readByte() byte {
	if this.pos >= len(this.buf) {
		return 0
	}

	b := this.buf[this.pos]
	this.pos++
	return b
}

// GetFreq returns the cumulative frequency value of the current symbol,
// clamped to [0..total-1] against rounding. The caller maps it to a symbol
// slot and completes the step with Update.
func (this *RangeDecoder) GetFreq(total int) int {
	this.r = this.rng / uint32(total)
	v := (this.code - this.low) / this.r

	if v >= uint32(total) {
		v = uint32(total) - 1
	}

	return int(v)
}

// Update narrows the interval to the symbol slot resolved from the last
// GetFreq call, mirroring the encoder, and renormalizes.
func (this *RangeDecoder) Update(cumFreq, freq int) {
	this.low += uint32(cumFreq) * this.r
	this.rng = this.r * uint32(freq)

	for this.rng < _RANGE_TOP {
		this.code = (this.code << 8) | uint32(this.readByte())
		this.rng <<= 8
		this.low <<= 8
	}
}

// Dispose this implementation does nothing
func (this *RangeDecoder) Dispose() {
}
