package models

type RankingMode string

const (
	RankingPoints RankingMode = "points"
	RankingElo    RankingMode = "elo"
)

func (m RankingMode) Valid() bool {
	return m == RankingPoints || m == RankingElo
}

type Settings struct {
	RankingMode RankingMode `json:"ranking_mode"`
}
