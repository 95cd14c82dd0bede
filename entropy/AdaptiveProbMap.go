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

const (
	_APM_ENTRIES = 33
	_APM_SPAN    = 65533
	_APM_RATE    = 5
)

// APM maps a probability and a context to a refined probability that the
// next bit will be 1 (secondary symbol estimation). Each context owns 33
// monotonically increasing entries initialised to the identity mapping
// across [1..65534]; Map interpolates between the two neighbouring
// entries and Update pulls both toward the observed bit.
type APM struct {
	data    []uint16
	ctxMask uint32
	lastIdx int
}

// NewAPM creates a new instance of APM with 2^contextBits contexts
func NewAPM(contextBits uint) (*APM, error) {
	if contextBits > 24 {
		return nil, fmt.Errorf("APM: invalid context bits %d (must be in [0..24])", contextBits)
	}

	this := &APM{}
	n := 1 << contextBits
	this.ctxMask = uint32(n) - 1
	this.data = make([]uint16, n*_APM_ENTRIES)

	for j := 0; j < _APM_ENTRIES; j++ {
		this.data[j] = uint16(1 + j*_APM_SPAN/(_APM_ENTRIES-1))
	}

	for i := 1; i < n; i++ {
		copy(this.data[i*_APM_ENTRIES:], this.data[0:_APM_ENTRIES])
	}

	return this, nil
}

// Map returns the refined probability for the given context and input
// prediction (both 16 bit scale, prediction in [1..65534]).
func (this *APM) Map(ctx uint32, pred int) int {
	pos := (pred - 1) * (_APM_ENTRIES - 1)
	idx := pos / _APM_SPAN
	w := float64(pos%_APM_SPAN) / _APM_SPAN

	if idx >= _APM_ENTRIES-1 {
		idx = _APM_ENTRIES - 2
		w = 1
	}

	base := int(ctx&this.ctxMask)*_APM_ENTRIES + idx
	this.lastIdx = base
	p := int(float64(this.data[base])*(1-w) + float64(this.data[base+1])*w + 0.5)

	if p < 1 {
		p = 1
	} else if p > 65534 {
		p = 65534
	}

	return p
}

// Update pulls the two entries used by the last Map call toward the
// observed bit by 1/32 of their distance to the target.
func (this *APM) Update(bit byte) {
	target := 1

	if bit != 0 {
		target = 65534
	}

	lo := &this.data[this.lastIdx]
	hi := &this.data[this.lastIdx+1]
	*lo = uint16(int(*lo) + (target-int(*lo))>>_APM_RATE)
	*hi = uint16(int(*hi) + (target-int(*hi))>>_APM_RATE)
}
