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

// Package hutter defines the top level interfaces used by the statistical
// compression core: the probability predictors consumed by the entropy
// coders and the process error codes shared with the command line app.
//
// The implementations of these interfaces live in sub-folders: the
// entropy package contains the coders, models and mixers, and the method
// package exposes the byte-to-byte compression methods built on them.
package hutter

const (
	ERR_MISSING_PARAM       = 1
	ERR_INVALID_METHOD      = 2
	ERR_CREATE_COMPRESSOR   = 3
	ERR_CREATE_DECOMPRESSOR = 4
	ERR_OUTPUT_IS_DIR       = 5
	ERR_OVERWRITE_FILE      = 6
	ERR_CREATE_FILE         = 7
	ERR_OPEN_FILE           = 8
	ERR_READ_FILE           = 9
	ERR_WRITE_FILE          = 10
	ERR_PROCESS_DATA        = 11
	ERR_VERIFY              = 12
	ERR_UNKNOWN             = 127
)

// Predictor predicts the probability of the next bit being 1.
type Predictor interface {
	// Update updates the internal probability model based on the observed bit
	Update(bit byte)

	// Get returns the value representing the probability of the next bit being 1
	// in the [1..65534] range.
	// E.G. 6554 represents roughly a probability of 10% for 1
	Get() int
}

// BytePredictor predicts a probability distribution over the next byte.
type BytePredictor interface {
	// Predict fills the 256 entry slice with the probability of each
	// byte value being the next symbol. The result sums to 1.
	Predict(probs []float64)

	// Update updates the internal model based on the observed symbol
	Update(b byte)
}
