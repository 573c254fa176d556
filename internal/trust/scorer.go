// Package trust implements the relationship-trust scoring used by session
// memory. Scores live in [0,1]; every update clamps at the point of mutation.
package trust

// MomentWeight returns the trust increment for a given moment kind.
func MomentWeight(moment string) float64 {
	switch moment {
	case "routine":
		return 0.01
	case "validated":
		return 0.03
	case "breakthrough":
		return 0.05
	default:
		return 0.01
	}
}

// UpdateScore calculates the new trust score after a turn.
//
// positive: whether the turn deepened the relationship (validated reflection,
// breakthrough) or ruptured it (rejected response, misread tone). Ruptures
// count 2x: trust is easier to lose than to build.
func UpdateScore(currentScore float64, moment string, positive bool) float64 {
	return UpdateScoreWithProfound(currentScore, moment, positive, false)
}

// UpdateScoreWithProfound calculates the new trust score, doubling the weight
// when the turn carried profound-moment markers.
//
// Formula: new_score = old_score + (moment_weight x profound_factor x direction)
func UpdateScoreWithProfound(currentScore float64, moment string, positive, profound bool) float64 {
	weight := MomentWeight(moment)
	if profound {
		weight *= 2.0
	}

	if positive {
		return clamp(currentScore + weight)
	}
	// Ruptures degrade trust 2x faster
	return clamp(currentScore - weight*2.0)
}

// RuptureDrop applies a cliff drop after a hard rupture (explicit negative
// feedback on a high-stakes turn).
func RuptureDrop(currentScore float64) float64 {
	score := currentScore - 0.3
	if score < 0.0 {
		return 0.0
	}
	return score
}

// DecayScore applies daily decay for stale relationships.
// decayRate is typically 0.01, days is the number of days since last contact.
func DecayScore(currentScore float64, decayRate float64, days int) float64 {
	score := currentScore
	for i := 0; i < days; i++ {
		score *= (1.0 - decayRate)
	}
	return clamp(score)
}

func clamp(score float64) float64 {
	if score < 0.0 {
		return 0.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}
