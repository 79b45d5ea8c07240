package settlementdomain

// Settlement is one directed transfer: From pays To.
type Settlement struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int    `json:"amount"`
}

// Settlements reduces a signed balance vector into pairwise transfers by
// repeatedly matching the largest creditor with the largest debtor (ties
// resolve to the lowest index) and moving min(credit, -debt) between them.
// A greedy pass like this is standard in bill-splitting tools; it is not
// guaranteed to hit the global minimum transfer count, but it terminates
// in at most len(members)-1 transfers and never emits a zero amount.
func Settlements(members []string, balances []int) []Settlement {
	remaining := make([]int, len(balances))
	copy(remaining, balances)

	if len(remaining) == 0 {
		return nil
	}

	var settlements []Settlement
	for {
		creditor, debtor := 0, 0
		for i, v := range remaining {
			if v > remaining[creditor] {
				creditor = i
			}
			if v < remaining[debtor] {
				debtor = i
			}
		}

		if remaining[creditor] <= 0 || remaining[debtor] >= 0 {
			break
		}

		amount := remaining[creditor]
		if -remaining[debtor] < amount {
			amount = -remaining[debtor]
		}

		settlements = append(settlements, Settlement{
			From:   members[debtor],
			To:     members[creditor],
			Amount: amount,
		})
		remaining[creditor] -= amount
		remaining[debtor] += amount
	}

	return settlements
}
