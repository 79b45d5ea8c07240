package settlementdomain

// ExpenseKind distinguishes how an expense is split.
type ExpenseKind string

const (
	// ExpenseShared splits the amount across every session member.
	ExpenseShared ExpenseKind = "shared"
	// ExpenseIndividual splits the amount across ForMembers only.
	ExpenseIndividual ExpenseKind = "individual"
)

// Expense is one paid cost to be split. For ExpenseIndividual, ForMembers
// lists who owes a share; the payer need not be among them.
type Expense struct {
	Description string      `json:"description"`
	Amount      int         `json:"amount"`
	PaidBy      string      `json:"paid_by"`
	Kind        ExpenseKind `json:"kind"`
	ForMembers  []string    `json:"for_members,omitempty"`
}

// ExpenseBalances computes each member's signed expense balance: payers
// are credited the full amount, targets are debited floor(amount/targets)
// each, and the remainder lands one unit at a time on the first targets in
// listed order so every expense nets to exactly zero. Names not present in
// members are skipped.
func ExpenseBalances(members []string, expenses []Expense) []int {
	balances := make([]int, len(members))

	for _, expense := range expenses {
		payerIdx := memberIndex(members, expense.PaidBy)
		if payerIdx == -1 {
			continue
		}

		targets := members
		if expense.Kind == ExpenseIndividual && len(expense.ForMembers) > 0 {
			targets = expense.ForMembers
		}

		baseShare := expense.Amount / len(targets)
		remainder := expense.Amount - baseShare*len(targets)

		balances[payerIdx] += expense.Amount
		for i, target := range targets {
			targetIdx := memberIndex(members, target)
			if targetIdx == -1 {
				continue
			}
			share := baseShare
			if i < remainder {
				share++
			}
			balances[targetIdx] -= share
		}
	}

	return balances
}

// ChipBalances converts final chip counts into signed balances against the
// starting stack. The vector is zero-sum only when total chips in
// circulation are conserved; that invariant belongs to the caller.
func ChipBalances(chipCounts []int, startChips, pricePerChip int) []int {
	balances := make([]int, len(chipCounts))
	for i, count := range chipCounts {
		balances[i] = (count - startChips) * pricePerChip
	}
	return balances
}

func memberIndex(members []string, name string) int {
	for i, m := range members {
		if m == name {
			return i
		}
	}
	return -1
}
