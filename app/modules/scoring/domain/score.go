package scoringdomain

import "sort"

// TobiInfo marks a bankruptcy in a round: Victim went below zero and
// Attacker collects the penalty. Both are seat indices into the round's
// raw score slice.
type TobiInfo struct {
	Victim   int `json:"victim"`
	Attacker int `json:"attacker"`
}

// RoundData is one round's raw input. A nil entry in Scores means that
// seat sat the round out (five-player rotation).
type RoundData struct {
	Scores []*int    `json:"scores"`
	Tobi   *TobiInfo `json:"tobi,omitempty"`
}

// RoundPoints normalizes a raw point total to 1,000-point units using the
// five-discard-six-round convention: the result truncates toward zero
// unless the hundreds digit is 6 or higher, in which case it rounds away
// from zero. Symmetric around zero: 23600 -> 24, 23599 -> 23, -23600 -> -24.
func RoundPoints(raw int) int {
	neg := raw < 0
	if neg {
		raw = -raw
	}
	units := raw / 1000
	if (raw/100)%10 >= 6 {
		units++
	}
	if neg {
		return -units
	}
	return units
}

// Ranks assigns 1-based ranks to scores, highest first. Exact ties are
// broken by input position: the earlier index takes the better rank.
func Ranks(scores []int) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	ranks := make([]int, len(scores))
	for pos, idx := range order {
		ranks[idx] = pos + 1
	}
	return ranks
}

// FinalScore applies the return-point offset and the uma bonus for a rank.
// Precondition: len(uma) >= rank.
func FinalScore(rounded, rank, returnPoints int, uma []int) int {
	return rounded - returnPoints + uma[rank-1]
}

// CalculateRoundScores converts one round's raw scores into final per-seat
// deltas. Sit-out seats (nil) score zero. Active scores are rounded via
// RoundPoints, ranked, offset by returnPoints, and adjusted by uma. The
// oka bonus, (returnPoints-startPoints) x activeCount, goes entirely to
// first place. A tobi penalty moves tobiPenalty from victim to attacker,
// but only when both map to active seats; otherwise it is skipped whole.
//
// Precondition: len(uma) >= number of active seats. The function indexes
// uma by rank and does not guard short tables; callers validate before
// invoking.
func CalculateRoundScores(rawScores []*int, returnPoints int, uma []int, tobiPenalty int, tobi *TobiInfo, startPoints int) []int {
	activeIndices := make([]int, 0, len(rawScores))
	for i, s := range rawScores {
		if s != nil {
			activeIndices = append(activeIndices, i)
		}
	}

	rounded := make([]int, len(activeIndices))
	for i, origIdx := range activeIndices {
		rounded[i] = RoundPoints(*rawScores[origIdx])
	}
	ranks := Ranks(rounded)

	activeFinals := make([]int, len(rounded))
	for i, score := range rounded {
		activeFinals[i] = FinalScore(score, ranks[i], returnPoints, uma)
	}

	if oka := (returnPoints - startPoints) * len(activeIndices); oka != 0 {
		for i, rank := range ranks {
			if rank == 1 {
				activeFinals[i] += oka
				break
			}
		}
	}

	if tobi != nil {
		victim := activeIndexOf(activeIndices, tobi.Victim)
		attacker := activeIndexOf(activeIndices, tobi.Attacker)
		if victim != -1 && attacker != -1 {
			activeFinals[victim] -= tobiPenalty
			activeFinals[attacker] += tobiPenalty
		}
	}

	finals := make([]int, len(rawScores))
	for activeIdx, origIdx := range activeIndices {
		finals[origIdx] = activeFinals[activeIdx]
	}
	return finals
}

// RoundRanks ranks a full round including sit-outs: active seats get their
// 1-based rank among active seats (rounded first), sit-out seats stay nil.
func RoundRanks(rawScores []*int) []*int {
	activeIndices := make([]int, 0, len(rawScores))
	rounded := make([]int, 0, len(rawScores))
	for i, s := range rawScores {
		if s != nil {
			activeIndices = append(activeIndices, i)
			rounded = append(rounded, RoundPoints(*s))
		}
	}
	ranks := Ranks(rounded)

	out := make([]*int, len(rawScores))
	for activeIdx, origIdx := range activeIndices {
		rank := ranks[activeIdx]
		out[origIdx] = &rank
	}
	return out
}

// activeIndexOf maps a seat index from the full round into the active-seat
// slice, or -1 if that seat sat out.
func activeIndexOf(activeIndices []int, seat int) int {
	for i, idx := range activeIndices {
		if idx == seat {
			return i
		}
	}
	return -1
}
