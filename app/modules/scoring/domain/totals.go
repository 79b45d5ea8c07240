package scoringdomain

// CalculateTotals sums each round's final scores into per-seat session
// totals. Seat count is taken from the first round; an empty round list
// returns nil and the caller sizes its own zero vector.
func CalculateTotals(rounds []RoundData, returnPoints int, uma []int, tobiPenalty, startPoints int) []int {
	if len(rounds) == 0 {
		return nil
	}
	totals := make([]int, len(rounds[0].Scores))
	for _, round := range rounds {
		scores := CalculateRoundScores(round.Scores, returnPoints, uma, tobiPenalty, round.Tobi, startPoints)
		for i, score := range scores {
			totals[i] += score
		}
	}
	return totals
}

// CalculateMoney converts point totals to currency at ratePerPoint. A zero
// rate is the no-stakes configuration and yields an all-zero vector.
func CalculateMoney(totals []int, ratePerPoint int) []int {
	money := make([]int, len(totals))
	for i, t := range totals {
		money[i] = t * ratePerPoint
	}
	return money
}
