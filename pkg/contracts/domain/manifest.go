package domain

import "time"

// Manifest is the single source of truth for which output files exist
type Manifest struct {
	Version            string            `json:"version"`
	RunID              string            `json:"runId,omitempty"`
	GeneratedAt        time.Time         `json:"generatedAt"`
	LatestMarketYear   int               `json:"latestMarketYear"`
	LatestLandingsYear int               `json:"latestLandingsYear"`
	Files              map[string]string `json:"files"`
	TopN               TopN              `json:"topN"`
}

// TopN records the cutoff used by every ranked table
type TopN struct {
	Origin int `json:"origin"`
	Area   int `json:"area"`
	Method int `json:"method"`
}
