// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package reranker

import "fmt"

// The neural head is a fixed-weight 8x6 dense layer, ReLU, 6x1 dense,
// sigmoid on output/3.2. These constants are not learned; they are fixed
// per the reference scorer and MUST be used verbatim.
var (
	hiddenWeights = [8][6]float64{
		{0.42, -0.18, 0.31, 0.07, -0.22, 0.15},
		{0.35, 0.24, -0.11, 0.29, 0.05, -0.08},
		{0.21, 0.38, 0.19, -0.14, 0.12, 0.27},
		{0.17, -0.09, 0.44, 0.08, 0.23, -0.19},
		{0.11, 0.16, -0.07, 0.32, -0.13, 0.21},
		{-0.14, 0.22, 0.18, 0.05, 0.29, 0.09},
		{-0.26, -0.08, 0.12, -0.17, 0.06, 0.14},
		{0.19, 0.13, 0.08, 0.21, 0.17, 0.11},
	}
	hiddenBias = [6]float64{0.05, -0.03, 0.02, 0.04, -0.06, 0.01}

	outputWeights = [6]float64{0.38, 0.29, 0.21, 0.14, -0.09, 0.17}
	outputBias    = 0.08
)

// verifyNeuralWeightShapes checks the constant tables' shapes at startup,
// rejecting mismatches rather than silently scoring with a malformed
// matrix. The shapes are compile-time fixed arrays, so this only guards
// against a future hand-edit accidentally changing a dimension.
func verifyNeuralWeightShapes() error {
	if len(hiddenWeights) != 8 {
		return fmt.Errorf("reranker: hiddenWeights must have 8 rows, got %d", len(hiddenWeights))
	}
	for i, row := range hiddenWeights {
		if len(row) != 6 {
			return fmt.Errorf("reranker: hiddenWeights row %d must have 6 cols, got %d", i, len(row))
		}
	}
	if len(hiddenBias) != 6 {
		return fmt.Errorf("reranker: hiddenBias must have 6 entries, got %d", len(hiddenBias))
	}
	if len(outputWeights) != 6 {
		return fmt.Errorf("reranker: outputWeights must have 6 entries, got %d", len(outputWeights))
	}
	return nil
}

func init() {
	if err := verifyNeuralWeightShapes(); err != nil {
		panic(err)
	}
}

func relu(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

// neuralScore runs the fixed-weight forward pass over the 8 features.
func neuralScore(features [8]float64) float64 {
	var hidden [6]float64
	for j := 0; j < 6; j++ {
		sum := hiddenBias[j]
		for i := 0; i < 8; i++ {
			sum += features[i] * hiddenWeights[i][j]
		}
		hidden[j] = relu(sum)
	}

	output := outputBias
	for j := 0; j < 6; j++ {
		output += hidden[j] * outputWeights[j]
	}
	return sigmoid(output / 3.2)
}
