package service

import (
	"math"

	"github.com/tanvir4425/Mask-App-sub001/internal/config"
	"github.com/tanvir4425/Mask-App-sub001/internal/model"
)

const (
	// Tier thresholds on the posterior mean.
	tierHighMin = 0.70
	tierLowMax  = 0.40

	// 95% band under the normal approximation.
	zScore = 1.96
)

// TrustService turns verdict counts into a 0-100 trust score with a
// confidence band and maturity tier, using a Beta-Binomial conjugate
// update. Pure computation: no I/O, deterministic given inputs.
type TrustService struct {
	priorAlpha  float64
	priorBeta   float64
	maturityMin int
}

func NewTrustService(cfg config.TrustConfig) *TrustService {
	return &TrustService{
		priorAlpha:  cfg.PriorAlpha,
		priorBeta:   cfg.PriorBeta,
		maturityMin: cfg.MaturityMin,
	}
}

// Trust is the computed score for a subject.
type Trust struct {
	Score    int
	ConfLow  int
	ConfHigh int
	Tier     model.TrustTier
}

// Compute aggregates good (true) and bad (false + misleading) verdict counts
// into the posterior trust score.
//
//	alpha = priorAlpha + good
//	beta  = priorBeta + bad
//	score = round(100 * alpha/(alpha+beta))
//	band  = mean ± 1.96 * sqrt(alpha*beta / ((alpha+beta)^2 * (alpha+beta+1)))
func (s *TrustService) Compute(good, bad int) Trust {
	alpha := s.priorAlpha + float64(good)
	beta := s.priorBeta + float64(bad)
	total := alpha + beta

	mean := alpha / total
	variance := alpha * beta / (total * total * (total + 1))
	sigma := math.Sqrt(variance)

	low := clamp01(mean - zScore*sigma)
	high := clamp01(mean + zScore*sigma)

	return Trust{
		Score:    int(math.Round(mean * 100)),
		ConfLow:  int(math.Round(low * 100)),
		ConfHigh: int(math.Round(high * 100)),
		Tier:     s.tier(good+bad, mean),
	}
}

// tier classifies how statistically reliable the score is. Below the
// maturity threshold the tier is always provisional, whatever the score.
func (s *TrustService) tier(checks int, mean float64) model.TrustTier {
	if checks < s.maturityMin {
		return model.TierProvisional
	}
	switch {
	case mean >= tierHighMin:
		return model.TierHigh
	case mean < tierLowMax:
		return model.TierLow
	default:
		return model.TierNormal
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
