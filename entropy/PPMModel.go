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

	internal "github.com/holbizmetrics/HutterPrize/internal"
)

const (
	_PPM_RESCALE_THRESHOLD = 1 << 14
	_PPM_MAX_MAX_ORDER     = 16
)

// ppmEntry is one (symbol, frequency) cell of a context table
type ppmEntry struct {
	sym  byte
	freq int
}

// ppmContext is the statistics table of one context: a list of entries
// with unique, strictly ascending symbols and a running total.
type ppmContext struct {
	entries []ppmEntry
	total   int
}

// find returns the index of the symbol in the table, or -1
func (this *ppmContext) find(sym byte) int {
	lo, hi := 0, len(this.entries)-1

	for lo <= hi {
		mid := (lo + hi) >> 1

		if this.entries[mid].sym == sym {
			return mid
		}

		if this.entries[mid].sym < sym {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}

	return -1
}

// add inserts the symbol with frequency 1 or increments it, halving all
// frequencies (never below 1) when the total reaches the rescale threshold.
func (this *ppmContext) add(sym byte) {
	if idx := this.find(sym); idx >= 0 {
		this.entries[idx].freq++
		this.total++
	} else {
		pos := 0

		for pos < len(this.entries) && this.entries[pos].sym < sym {
			pos++
		}

		this.entries = append(this.entries, ppmEntry{})
		copy(this.entries[pos+1:], this.entries[pos:])
		this.entries[pos] = ppmEntry{sym: sym, freq: 1}
		this.total++
	}

	if this.total >= _PPM_RESCALE_THRESHOLD {
		this.rescale()
	}
}

func (this *ppmContext) rescale() {
	this.total = 0

	for i := range this.entries {
		this.entries[i].freq >>= 1

		if this.entries[i].freq == 0 {
			this.entries[i].freq = 1
		}

		this.total += this.entries[i].freq
	}
}

// effective returns the total frequency and distinct count restricted to
// the symbols not marked in the exclusion bitmap.
func (this *ppmContext) effective(excl *[256]bool) (int, int) {
	effTotal, effDistinct := 0, 0

	for _, e := range this.entries {
		if !excl[e.sym] {
			effTotal += e.freq
			effDistinct++
		}
	}

	return effTotal, effDistinct
}

// PPMModel is a Prediction by Partial Matching context model with PPMD
// escape estimation (esc = max(1, distinct/2)) and full exclusion. It
// offers a direct encode/decode interface over the range coder and a
// distribution extraction interface for mixing. The two modes keep
// separate exclusion bitmaps so mixing never contaminates direct coding.
type PPMModel struct {
	maxOrder int
	tables   []map[uint64]*ppmContext
	ring     []byte
	pos      int
	seen     int
	excl     [256]bool
	predExcl [256]bool
}

// NewPPMModel creates a new instance of PPMModel with context orders
// 0 to maxOrder.
func NewPPMModel(maxOrder int) (*PPMModel, error) {
	if maxOrder < 0 || maxOrder > _PPM_MAX_MAX_ORDER {
		return nil, fmt.Errorf("PPM model: invalid max order %d (must be in [0..%d])", maxOrder, _PPM_MAX_MAX_ORDER)
	}

	this := &PPMModel{}
	this.maxOrder = maxOrder
	this.tables = make([]map[uint64]*ppmContext, maxOrder+1)

	for o := range this.tables {
		this.tables[o] = make(map[uint64]*ppmContext)
	}

	ringSize := maxOrder

	if ringSize == 0 {
		ringSize = 1
	}

	this.ring = make([]byte, ringSize)
	return this, nil
}

// MaxOrder returns the highest context order of the model
func (this *PPMModel) MaxOrder() int {
	return this.maxOrder
}

// hash returns the FNV-1a hash of the last 'order' context bytes.
// Order 0 hashes to 0.
func (this *PPMModel) hash(order int) uint64 {
	if order == 0 {
		return 0
	}

	h := internal.FNV1A_OFFSET
	n := len(this.ring)

	for i := order; i >= 1; i-- {
		h = internal.HashByte(h, this.ring[(this.pos-i+n+n)%n])
	}

	return h
}

func (this *PPMModel) push(sym byte) {
	this.ring[this.pos] = sym
	this.pos = (this.pos + 1) % len(this.ring)
	this.seen++
}

func (this *PPMModel) updateTables(sym byte) {
	maxo := min(this.maxOrder, this.seen)

	for o := 0; o <= maxo; o++ {
		h := this.hash(o)
		ctx := this.tables[o][h]

		if ctx == nil {
			ctx = &ppmContext{}
			this.tables[o][h] = ctx
		}

		ctx.add(sym)
	}
}

// Encode codes one symbol into the range encoder, walking context orders
// from highest to lowest, emitting escapes with full exclusion, and
// falling through to a uniform order -1 when no context knows the symbol.
// The model is updated afterwards so the decoder stays in lock-step.
func (this *PPMModel) Encode(enc *RangeEncoder, sym byte) {
	clear(this.excl[:])
	maxo := min(this.maxOrder, this.seen)
	coded := false

	for o := maxo; o >= 0 && !coded; o-- {
		ctx := this.tables[o][this.hash(o)]

		if ctx == nil {
			continue
		}

		effTotal, effDistinct := ctx.effective(&this.excl)

		if effDistinct == 0 {
			continue
		}

		esc := effDistinct >> 1

		if esc < 1 {
			esc = 1
		}

		total := effTotal + esc
		idx := ctx.find(sym)

		if idx >= 0 && !this.excl[sym] {
			cum := 0

			for i := 0; i < idx; i++ {
				if !this.excl[ctx.entries[i].sym] {
					cum += ctx.entries[i].freq
				}
			}

			enc.Encode(cum, ctx.entries[idx].freq, total)
			coded = true
		} else {
			enc.Encode(effTotal, esc, total)

			for _, e := range ctx.entries {
				this.excl[e.sym] = true
			}
		}
	}

	if !coded {
		// Order -1: uniform over the bytes no context has seen
		rank, remaining := 0, 0

		for s := 0; s < 256; s++ {
			if this.excl[s] {
				continue
			}

			if s < int(sym) {
				rank++
			}

			remaining++
		}

		enc.Encode(rank, 1, remaining)
	}

	this.updateTables(sym)
	this.push(sym)
}

// Decode mirrors Encode exactly against the range decoder
func (this *PPMModel) Decode(dec *RangeDecoder) (byte, error) {
	clear(this.excl[:])
	maxo := min(this.maxOrder, this.seen)
	sym := -1

	for o := maxo; o >= 0 && sym < 0; o-- {
		ctx := this.tables[o][this.hash(o)]

		if ctx == nil {
			continue
		}

		effTotal, effDistinct := ctx.effective(&this.excl)

		if effDistinct == 0 {
			continue
		}

		esc := effDistinct >> 1

		if esc < 1 {
			esc = 1
		}

		total := effTotal + esc
		v := dec.GetFreq(total)

		if v >= effTotal {
			dec.Update(effTotal, esc)

			for _, e := range ctx.entries {
				this.excl[e.sym] = true
			}

			continue
		}

		cum := 0

		for _, e := range ctx.entries {
			if this.excl[e.sym] {
				continue
			}

			if v < cum+e.freq {
				sym = int(e.sym)
				dec.Update(cum, e.freq)
				break
			}

			cum += e.freq
		}
	}

	if sym < 0 {
		remaining := 0

		for s := 0; s < 256; s++ {
			if !this.excl[s] {
				remaining++
			}
		}

		if remaining == 0 {
			return 0, errors.New("PPM model: corrupt stream (no symbol left at order -1)")
		}

		v := dec.GetFreq(remaining)
		rank := 0

		for s := 0; s < 256; s++ {
			if this.excl[s] {
				continue
			}

			if rank == v {
				sym = s
				break
			}

			rank++
		}

		if sym < 0 {
			return 0, errors.New("PPM model: corrupt stream (cumulative value out of range at order -1)")
		}

		dec.Update(v, 1)
	}

	this.updateTables(byte(sym))
	this.push(byte(sym))
	return byte(sym), nil
}

// PredictDistribution fills probs with the model's current distribution
// over the next byte, blending all orders through the escape chain. It
// uses its own exclusion bitmap and performs no model update; the host
// must call UpdateModel once the symbol is known.
func (this *PPMModel) PredictDistribution(probs []float64) {
	for i := range probs {
		probs[i] = 0
	}

	clear(this.predExcl[:])
	escProd := 1.0
	maxo := min(this.maxOrder, this.seen)

	for o := maxo; o >= 0; o-- {
		ctx := this.tables[o][this.hash(o)]

		if ctx == nil {
			continue
		}

		effTotal, effDistinct := ctx.effective(&this.predExcl)

		if effDistinct == 0 {
			continue
		}

		esc := effDistinct >> 1

		if esc < 1 {
			esc = 1
		}

		total := effTotal + esc
		scale := escProd / float64(total)

		for _, e := range ctx.entries {
			if !this.predExcl[e.sym] {
				probs[e.sym] = float64(e.freq) * scale
			}
		}

		escProd *= float64(esc) / float64(total)

		for _, e := range ctx.entries {
			this.predExcl[e.sym] = true
		}
	}

	remaining := 0

	for s := 0; s < 256; s++ {
		if !this.predExcl[s] {
			remaining++
		}
	}

	if remaining > 0 {
		u := escProd / float64(remaining)

		for s := 0; s < 256; s++ {
			if !this.predExcl[s] {
				probs[s] = u
			}
		}
	}
}

// UpdateModel applies the same per-order table update as the coding paths
// without emitting anything. Used when the model feeds a mixer.
func (this *PPMModel) UpdateModel(sym byte) {
	this.updateTables(sym)
	this.push(sym)
}
