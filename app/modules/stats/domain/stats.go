package statsdomain

// OverviewStats is one member's lifetime record across every session
// they appear in. Rank counts only include rounds the member actually
// played; sit-out rounds in five-player sessions are excluded.
type OverviewStats struct {
	TotalSessions int     `json:"total_sessions"`
	TotalRounds   int     `json:"total_rounds"`
	TotalBalance  int     `json:"total_balance"`
	AvgRank       float64 `json:"avg_rank"`
	FirstPlace    int     `json:"first_place"`
	SecondPlace   int     `json:"second_place"`
	ThirdPlace    int     `json:"third_place"`
	FourthPlace   int     `json:"fourth_place"`
	Tobi          int     `json:"tobi"`
	TobiRate      float64 `json:"tobi_rate"`
}

// MonthlyStat is one member's record for one calendar month
// ("2026/03"), newest month first.
type MonthlyStat struct {
	Month    string `json:"month"`
	Sessions int    `json:"sessions"`
	Balance  int    `json:"balance"`
}

// OpponentStat is a member's record across the sessions shared with one
// opponent.
type OpponentStat struct {
	Name     string  `json:"name"`
	Sessions int     `json:"sessions"`
	Balance  int     `json:"balance"`
	AvgRank  float64 `json:"avg_rank"`
}

// MemberBalance is one seat's final balance in a session history entry.
type MemberBalance struct {
	Name    string `json:"name"`
	Balance int    `json:"balance"`
}

// SessionResult is one session in a group's history, oldest first.
type SessionResult struct {
	Date    string          `json:"date"`
	Members []MemberBalance `json:"members"`
}

// MemberStat is one member's standing within a group, used for the
// per-group ranking table.
type MemberStat struct {
	Name       string  `json:"name"`
	Balance    int     `json:"balance"`
	AvgRank    float64 `json:"avg_rank"`
	RankCounts [4]int  `json:"rank_counts"`
}

// GroupStat is a member's record within one group, with the full member
// ranking and session history.
type GroupStat struct {
	Name           string          `json:"name"`
	Sessions       int             `json:"sessions"`
	Balance        int             `json:"balance"`
	AvgRank        float64         `json:"avg_rank"`
	RankCounts     [4]int          `json:"rank_counts"`
	MemberRanking  []MemberStat    `json:"member_ranking"`
	SessionHistory []SessionResult `json:"session_history"`
}
