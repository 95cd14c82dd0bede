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
	"errors"
	"fmt"

	hutter "github.com/holbizmetrics/HutterPrize"
)

const (
	_BINARY_TOP         = uint32(0xFFFFFFFF)
	_BINARY_NORM        = uint32(1) << 24
	_BINARY_FLUSH_BYTES = 4
)

// BinaryEncoder is a bit level arithmetic encoder using an external
// probability predictor. Bytes are coded MSB first.
type BinaryEncoder struct {
	predictor hutter.Predictor
	x1        uint32
	x2        uint32
	disposed  bool
	out       []byte
}

// NewBinaryEncoder creates an instance of BinaryEncoder using the given
// predictor to predict the probability of the next bit to be one.
func NewBinaryEncoder(predictor hutter.Predictor) (*BinaryEncoder, error) {
	if predictor == nil {
		return nil, errors.New("Binary codec: Invalid null predictor parameter")
	}

	this := &BinaryEncoder{}
	this.predictor = predictor
	this.x1 = 0
	this.x2 = _BINARY_TOP
	this.out = make([]byte, 0, 64)
	return this, nil
}

// EncodeByte encodes the given value bit by bit, MSB first
func (this *BinaryEncoder) EncodeByte(val byte) {
	this.EncodeBit((val>>7)&1, this.predictor.Get())
	this.EncodeBit((val>>6)&1, this.predictor.Get())
	this.EncodeBit((val>>5)&1, this.predictor.Get())
	this.EncodeBit((val>>4)&1, this.predictor.Get())
	this.EncodeBit((val>>3)&1, this.predictor.Get())
	this.EncodeBit((val>>2)&1, this.predictor.Get())
	this.EncodeBit((val>>1)&1, this.predictor.Get())
	this.EncodeBit(val&1, this.predictor.Get())
}

// EncodeBit encodes one bit using arithmetic coding with the given
// probability of the bit being 1 (16 bit scale, in [1..65534]). The
// predictor is updated after the interval is narrowed so that both coder
// sides observe the bit at the same point.
func (this *BinaryEncoder) EncodeBit(bit byte, pred int) {
	if pred < 1 || pred > 65534 {
		panic(fmt.Errorf("Binary codec: invalid probability %d (must be in [1..65534])", pred))
	}

	xmid := this.x1 + uint32((uint64(this.x2-this.x1)*uint64(pred))>>16)

	if bit != 0 {
		this.x2 = xmid
	} else {
		this.x1 = xmid + 1
	}

	this.predictor.Update(bit)

	// Emit the leading bytes on which x1 and x2 already agree
	for (this.x1 ^ this.x2) < _BINARY_NORM {
		this.out = append(this.out, byte(this.x2>>24))
		this.x1 <<= 8
		this.x2 = (this.x2 << 8) | 0xFF
	}
}

// Dispose flushes the interval by writing the 4 bytes of x1.
// This implementation is idempotent.
func (this *BinaryEncoder) Dispose() {
	if this.disposed {
		return
	}

	this.disposed = true

	for i := 0; i < _BINARY_FLUSH_BYTES; i++ {
		this.out = append(this.out, byte(this.x1>>24))
		this.x1 <<= 8
	}
}

// Bytes returns the encoded stream
func (this *BinaryEncoder) Bytes() []byte {
	return this.out
}

// BinaryDecoder is the decoder side of BinaryEncoder. The predictor must
// be in the exact state of the encoder side predictor for every bit.
type BinaryDecoder struct {
	predictor hutter.Predictor
	x1        uint32
	x2        uint32
	code      uint32
	buf       []byte
	pos       int
}

// NewBinaryDecoder creates an instance of BinaryDecoder over the given
// encoded bytes. It primes the code value with 4 bytes.
func NewBinaryDecoder(data []byte, predictor hutter.Predictor) (*BinaryDecoder, error) {
	if predictor == nil {
		return nil, errors.New("Binary codec: Invalid null predictor parameter")
	}

	this := &BinaryDecoder{}
	this.predictor = predictor
	this.x1 = 0
	this.x2 = _BINARY_TOP
	this.buf = data

	for i := 0; i < _BINARY_FLUSH_BYTES; i++ {
		this.code = (this.code << 8) | uint32(this.readByte())
	}

	return this, nil
}

// readByte returns the next input byte, or 0 past end of input.
func (this *BinaryDecoder) readByte() byte {
	if this.pos >= len(this.buf) {
		return 0
	}

	b := this.buf[this.pos]
	this.pos++
	return b
}

// DecodeByte decodes one byte bit by bit, MSB first
func (this *BinaryDecoder) DecodeByte() byte {
	return (this.DecodeBit(this.predictor.Get()) << 7) |
		(this.DecodeBit(this.predictor.Get()) << 6) |
		(this.DecodeBit(this.predictor.Get()) << 5) |
		(this.DecodeBit(this.predictor.Get()) << 4) |
		(this.DecodeBit(this.predictor.Get()) << 3) |
		(this.DecodeBit(this.predictor.Get()) << 2) |
		(this.DecodeBit(this.predictor.Get()) << 1) |
		this.DecodeBit(this.predictor.Get())
}

// DecodeBit decodes one bit with the given probability of it being 1
// (16 bit scale, in [1..65534]).
func (this *BinaryDecoder) DecodeBit(pred int) byte {
	if pred < 1 || pred > 65534 {
		panic(fmt.Errorf("Binary codec: invalid probability %d (must be in [1..65534])", pred))
	}

	xmid := this.x1 + uint32((uint64(this.x2-this.x1)*uint64(pred))>>16)
	var bit byte

	if this.code <= xmid {
		bit = 1
		this.x2 = xmid
	} else {
		bit = 0
		this.x1 = xmid + 1
	}

	this.predictor.Update(bit)

	for (this.x1 ^ this.x2) < _BINARY_NORM {
		this.x1 <<= 8
		this.x2 = (this.x2 << 8) | 0xFF
		this.code = (this.code << 8) | uint32(this.readByte())
	}

	return bit
}

// Dispose this implementation does nothing
func (this *BinaryDecoder) Dispose() {
}
