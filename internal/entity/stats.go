package entity

// PlayerStats are the lifetime counters of one player, overall and split
// by the role they played.
type PlayerStats struct {
	TotalWins   int `json:"total_wins"`
	TotalLosses int `json:"total_losses"`
	TotalDraws  int `json:"total_draws"`

	TigerWins   int `json:"tiger_wins"`
	TigerLosses int `json:"tiger_losses"`
	TigerDraws  int `json:"tiger_draws"`

	GoatWins   int `json:"goat_wins"`
	GoatLosses int `json:"goat_losses"`
	GoatDraws  int `json:"goat_draws"`
}
