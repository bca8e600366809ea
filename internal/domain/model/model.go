// Package model contains domain models passed between pipeline stages.
package model

// UnknownPosition marks outcomes whose player position could not be
// classified. Such rows never contribute to priors.
const UnknownPosition = "Unknown"

// Outcome represents a single shot outcome supplied by the acquisition
// collaborator. Immutable input.
type Outcome struct {
	PlayerID   string // subject identifier, required
	PlayerName string
	Position   string // coarse category (group key), e.g. "Guard"
	Zone       string // fine category (sub key), e.g. "Above the Break 3"
	Made       bool
}

// GroupPrior holds the Beta prior parameters for a (position, zone) group.
// Alpha and Beta follow the conjugate construction: alpha = makes,
// beta = attempts - makes, so alpha + beta = attempts > 0.
type GroupPrior struct {
	Position string
	Zone     string
	Makes    int64
	Attempts int64
	Pct      float64
	Alpha    float64
	Beta     float64
}

// EntityStat holds a player's observed counts within one (position, zone).
type EntityStat struct {
	PlayerID   string
	PlayerName string
	Position   string
	Zone       string
	Makes      int64
	Attempts   int64
	RawPct     float64
}

// PosteriorRecord is the finished, immutable artifact of one pipeline run
// for one (player, position, zone) row.
type PosteriorRecord struct {
	PlayerID      string  `json:"player_id" parquet:"player_id"`
	PlayerName    string  `json:"player_name" parquet:"player_name"`
	Position      string  `json:"position" parquet:"position"`
	Zone          string  `json:"zone" parquet:"zone"`
	Attempts      int64   `json:"attempts" parquet:"attempts"`
	Makes         int64   `json:"makes" parquet:"makes"`
	RawPct        float64 `json:"raw_fg_pct" parquet:"raw_fg_pct"`
	PriorPct      float64 `json:"prior_fg_pct" parquet:"prior_fg_pct"`
	PosteriorMean float64 `json:"posterior_mean" parquet:"posterior_mean"`
	CILower       float64 `json:"ci_lower" parquet:"ci_lower"`
	CIUpper       float64 `json:"ci_upper" parquet:"ci_upper"`
	CIWidth       float64 `json:"ci_width" parquet:"ci_width"`
	Shrinkage     float64 `json:"shrinkage" parquet:"shrinkage"`
	PriorAlpha    float64 `json:"prior_alpha" parquet:"prior_alpha"`
	PriorBeta     float64 `json:"prior_beta" parquet:"prior_beta"`
	PostAlpha     float64 `json:"posterior_alpha" parquet:"posterior_alpha"`
	PostBeta      float64 `json:"posterior_beta" parquet:"posterior_beta"`
}

// Valid reports whether an outcome carries every required field.
func (o Outcome) Valid() bool {
	return o.PlayerID != "" && o.Position != "" && o.Zone != ""
}

// Classified reports whether the outcome's position is usable for priors.
func (o Outcome) Classified() bool {
	return o.Position != "" && o.Position != UnknownPosition
}
