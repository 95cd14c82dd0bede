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

	internal "github.com/holbizmetrics/HutterPrize/internal"
)

const (
	_MATCH_MIN_LEN   = 4
	_MATCH_HASH_BITS = 16
	_MATCH_BASE_CONF = 0.2
	_MATCH_CONF_STEP = 0.12
	_MATCH_MAX_CONF  = 0.97
)

// MatchModel predicts the next byte by extending the longest match between
// the current context and earlier history (LZ like). The hash table maps
// an order-4 context hash to the most recent position following that
// context; entries are last-writer-wins and candidates are re-verified
// byte for byte before a match starts. When no match is active the model
// emits the uniform distribution, which is invisible to geometric mixing.
type MatchModel struct {
	buf      []byte
	hashes   []int32
	hashMask uint64
	minLen   int
	matchPtr int
	matchLen int
	active   bool
}

// NewMatchModel creates a new instance of MatchModel with the default
// context length of 4 bytes.
func NewMatchModel() (*MatchModel, error) {
	return NewMatchModelWithLen(_MATCH_MIN_LEN)
}

// NewMatchModelWithLen creates a new instance of MatchModel using the
// given minimum context/match length.
func NewMatchModelWithLen(minLen int) (*MatchModel, error) {
	if minLen < 1 {
		return nil, fmt.Errorf("Match model: invalid minimum length %d", minLen)
	}

	this := &MatchModel{}
	this.minLen = minLen
	this.buf = make([]byte, 0, 1024)
	this.hashes = make([]int32, 1<<_MATCH_HASH_BITS)
	this.hashMask = (1 << _MATCH_HASH_BITS) - 1
	return this, nil
}

func (this *MatchModel) ctxHash() uint64 {
	return internal.Hash(this.buf[len(this.buf)-this.minLen:]) & this.hashMask
}

// Predict assigns a confidence growing with the match length to the
// predicted byte, or the uniform distribution when idle.
func (this *MatchModel) Predict(probs []float64) {
	if this.active && this.matchPtr < len(this.buf) {
		conf := _MATCH_BASE_CONF + float64(this.matchLen-this.minLen)*_MATCH_CONF_STEP

		if conf > _MATCH_MAX_CONF {
			conf = _MATCH_MAX_CONF
		}

		rest := (1 - conf) / 255

		for s := range probs {
			probs[s] = rest
		}

		probs[this.buf[this.matchPtr]] = conf
		return
	}

	for s := range probs {
		probs[s] = 1.0 / 256
	}
}

// Update appends the observed byte to the history, extends or ends the
// current match, and tries to start a new one from the hash table.
func (this *MatchModel) Update(b byte) {
	this.buf = append(this.buf, b)

	if this.active {
		if this.buf[this.matchPtr] == b {
			this.matchLen++
			this.matchPtr++
		} else {
			this.active = false
			this.matchLen = 0
		}
	}

	if len(this.buf) < this.minLen {
		return
	}

	h := this.ctxHash()

	if !this.active {
		if cand := int(this.hashes[h]) - 1; cand >= this.minLen && cand < len(this.buf) {
			if bytes.Equal(this.buf[cand-this.minLen:cand], this.buf[len(this.buf)-this.minLen:]) {
				this.active = true
				this.matchPtr = cand
				this.matchLen = this.minLen
			}
		}
	}

	this.hashes[h] = int32(len(this.buf) + 1)
}

// Candidate returns the predicted next byte, the current match length and
// whether a match is active. Used by the bit level match prediction.
func (this *MatchModel) Candidate() (byte, int, bool) {
	if !this.active || this.matchPtr >= len(this.buf) {
		return 0, 0, false
	}

	return this.buf[this.matchPtr], this.matchLen, true
}
