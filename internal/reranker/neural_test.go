// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package reranker

import "testing"

func TestVerifyNeuralWeightShapes_PassesOnTheRealTables(t *testing.T) {
	if err := verifyNeuralWeightShapes(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNeuralScore_IsInUnitRange(t *testing.T) {
	cases := [][8]float64{
		{0, 0, 0, 0, 0, 0, 0, 0},
		{1, 1, 1, 1, 1, 1, 1, 1},
		{0.5, 0.2, 0.8, 0.1, 0.9, 0.3, 0.4, 0.6},
	}
	for _, f := range cases {
		got := neuralScore(f)
		if got < 0 || got > 1 {
			t.Errorf("neuralScore(%v) = %v, want in [0,1]", f, got)
		}
	}
}

func TestNeuralScore_HigherFeaturesScoreHigher(t *testing.T) {
	low := neuralScore([8]float64{0, 0, 0, 0, 0, 0, 0, 0})
	high := neuralScore([8]float64{1, 1, 1, 1, 1, 0, 0, 1})
	if high <= low {
		t.Errorf("feature-rich input should score higher than the all-zero baseline: high=%v low=%v", high, low)
	}
}

func TestRelu(t *testing.T) {
	if relu(-1) != 0 {
		t.Error("relu(-1) should be 0")
	}
	if relu(2) != 2 {
		t.Error("relu(2) should be 2")
	}
}
