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
	"math/bits"

	internal "github.com/holbizmetrics/HutterPrize/internal"
)

const (
	_BITMIX_INPUTS          = 7
	_BITMIX_PPM_LOW_ORDER   = 2
	_BITMIX_PPM_HIGH_ORDER  = 4
	_BITMIX_MATCH_BASE_CONF = 0.85
	_BITMIX_MATCH_CONF_STEP = 0.02
	_BITMIX_MATCH_MAX_CONF  = 0.98
)

// BitMixModel is the bit level predictor behind the binary coder. Each
// byte is coded MSB first; the partial byte is kept in sentinel form
// (leading 1 followed by the known bits) so both coder sides always agree
// on how many bits have been emitted. Once per byte it extracts PPM
// distributions at two orders, then per bit it marginalises them over the
// known prefix, gathers context keyed bit predictions and a match bit
// prediction, mixes everything logistically and refines the result with
// an adaptive probability map.
type BitMixModel struct {
	ppmLow   *PPMModel
	ppmHigh  *PPMModel
	match    *MatchModel
	distLow  [256]float64
	distHigh [256]float64
	bp0      *BitPredictor
	bp1      *BitPredictor
	bp2      *BitPredictor
	bpWord   *BitPredictor
	mixer    *BitMixer
	apm      *APM
	preds    [_BITMIX_INPUTS]int
	ctx0     uint32
	ctx1     uint32
	ctx2     uint32
	ctxWord  uint32
	c0       uint32 // partial byte in sentinel form (1..511)
	c4       uint32 // last 4 whole bytes, most recent in the low 8 bits
	wordHash uint64
	pr       int
}

// NewBitMixModel creates a new instance of BitMixModel
func NewBitMixModel() (*BitMixModel, error) {
	this := &BitMixModel{}
	var err error

	if this.ppmLow, err = NewPPMModel(_BITMIX_PPM_LOW_ORDER); err != nil {
		return nil, err
	}

	if this.ppmHigh, err = NewPPMModel(_BITMIX_PPM_HIGH_ORDER); err != nil {
		return nil, err
	}

	if this.match, err = NewMatchModel(); err != nil {
		return nil, err
	}

	if this.bp0, err = NewBitPredictor(9); err != nil {
		return nil, err
	}

	if this.bp1, err = NewBitPredictor(17); err != nil {
		return nil, err
	}

	if this.bp2, err = NewBitPredictor(22); err != nil {
		return nil, err
	}

	if this.bpWord, err = NewBitPredictor(17); err != nil {
		return nil, err
	}

	if this.mixer, err = NewBitMixer(_BITMIX_INPUTS); err != nil {
		return nil, err
	}

	if this.apm, err = NewAPM(9); err != nil {
		return nil, err
	}

	this.c0 = 1
	this.wordHash = internal.FNV1A_OFFSET
	this.prepareByte()
	this.computePrediction()
	return this, nil
}

// prepareByte recomputes the once-per-byte byte level distributions
func (this *BitMixModel) prepareByte() {
	this.ppmLow.PredictDistribution(this.distLow[:])
	this.ppmHigh.PredictDistribution(this.distHigh[:])
}

// marginal reduces a byte distribution to P(next bit = 1) given the known
// bits of the current byte.
func (this *BitMixModel) marginal(dist *[256]float64) int {
	known := uint(bits.Len32(this.c0)) - 1
	prefix := this.c0 - (1 << known)
	shift := 8 - known
	sum0, sum1 := 0.0, 0.0

	for s := 0; s < 256; s++ {
		if uint32(s)>>shift != prefix {
			continue
		}

		if (s>>(shift-1))&1 == 1 {
			sum1 += dist[s]
		} else {
			sum0 += dist[s]
		}
	}

	if sum0+sum1 <= 0 {
		return 32768
	}

	p := int(sum1/(sum0+sum1)*65535 + 0.5)

	if p < 1 {
		p = 1
	} else if p > 65534 {
		p = 65534
	}

	return p
}

// matchBitPrediction predicts the candidate byte's next bit when the
// emitted prefix of the current byte still agrees with the candidate.
// Any disagreement collapses the prediction to neutral for this byte.
func (this *BitMixModel) matchBitPrediction() int {
	cand, matchLen, ok := this.match.Candidate()

	if !ok {
		return 32768
	}

	known := uint(bits.Len32(this.c0)) - 1
	prefix := this.c0 - (1 << known)
	shift := 8 - known

	if uint32(cand)>>shift != prefix {
		return 32768
	}

	conf := _BITMIX_MATCH_BASE_CONF + float64(matchLen-_MATCH_MIN_LEN)*_BITMIX_MATCH_CONF_STEP

	if conf > _BITMIX_MATCH_MAX_CONF {
		conf = _BITMIX_MATCH_MAX_CONF
	}

	if conf < _BITMIX_MATCH_BASE_CONF {
		conf = _BITMIX_MATCH_BASE_CONF
	}

	var p int

	if (cand>>(shift-1))&1 == 1 {
		p = int(conf*65535 + 0.5)
	} else {
		p = int((1-conf)*65535 + 0.5)
	}

	if p < 1 {
		p = 1
	} else if p > 65534 {
		p = 65534
	}

	return p
}

// computePrediction gathers all inputs for the next bit, mixes them and
// stores the refined probability returned by Get.
func (this *BitMixModel) computePrediction() {
	this.ctx0 = this.c0
	this.ctx1 = ((this.c4 & 0xFF) << 9) | this.c0
	h := internal.HashByte(internal.FNV1A_OFFSET, byte(this.c4>>8))
	h = internal.HashByte(h, byte(this.c4))
	this.ctx2 = (uint32(h) << 9) ^ this.c0
	this.ctxWord = ((uint32(this.wordHash) ^ uint32(this.wordHash>>32)) << 9) ^ this.c0

	this.preds[0] = this.marginal(&this.distLow)
	this.preds[1] = this.marginal(&this.distHigh)
	this.preds[2] = this.bp0.Predict(this.ctx0)
	this.preds[3] = this.bp1.Predict(this.ctx1)
	this.preds[4] = this.bp2.Predict(this.ctx2)
	this.preds[5] = this.bpWord.Predict(this.ctxWord)
	this.preds[6] = this.matchBitPrediction()

	mixed := this.mixer.Mix(this.preds[:])
	refined := this.apm.Map(this.c0, mixed)
	this.pr = (3*refined + mixed) >> 2

	if this.pr < 1 {
		this.pr = 1
	} else if this.pr > 65534 {
		this.pr = 65534
	}
}

// Get returns the probability of the next bit being 1, 16 bit scale
func (this *BitMixModel) Get() int {
	return this.pr
}

// Update trains every stage on the observed bit, closes the byte when its
// 8th bit arrives and prepares the prediction for the next bit.
func (this *BitMixModel) Update(bit byte) {
	this.apm.Update(bit)
	this.mixer.Update(bit)
	this.bp0.Update(this.ctx0, bit)
	this.bp1.Update(this.ctx1, bit)
	this.bp2.Update(this.ctx2, bit)
	this.bpWord.Update(this.ctxWord, bit)

	this.c0 = (this.c0 << 1) | uint32(bit)

	if this.c0 >= 256 {
		b := byte(this.c0)
		this.c4 = (this.c4 << 8) | uint32(b)
		this.ppmLow.UpdateModel(b)
		this.ppmHigh.UpdateModel(b)
		this.match.Update(b)

		if isWordChar(b) {
			this.wordHash = internal.HashByte(this.wordHash, b)
		} else {
			this.wordHash = internal.FNV1A_OFFSET
		}

		this.c0 = 1
		this.prepareByte()
	}

	this.computePrediction()
}
