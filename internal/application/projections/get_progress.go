package projections

import (
	"context"

	"toursights/internal/adapters/storage/kv"
	"toursights/internal/domain/quiz"
	"toursights/internal/domain/tracking"
)

// ProgressAnimationMs is the count-up duration the dashboard uses for its numbers.
const ProgressAnimationMs = 600

// StationProgress is the stored result of one station.
type StationProgress struct {
	StationID int    `json:"stationId"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	MaxScore  int    `json:"maxScore"`
}

// GetProgressResult carries the output of the progress projection.
type GetProgressResult struct {
	Stations       []StationProgress `json:"stations"`
	TotalPoints    int               `json:"totalPoints"`
	MaxPoints      int               `json:"maxPoints"`
	TotalKm        float64           `json:"totalKm"`
	TotalKmDisplay string            `json:"totalKmDisplay"`
	AnimationMs    int               `json:"animationMs"`
}

// GetProgressDeps holds dependencies for the progress projection.
type GetProgressDeps struct {
	Store   KVReader
	Catalog quiz.Catalog
}

// QueryGetProgress reads every station score and the saved distance.
// Absent or malformed values count as 0; scores are clamped to [0, maxScore].
// PRE: deps.Catalog has been validated
// POST: one entry per catalog station, in catalog order
// INVARIANT: Store state is not mutated
func QueryGetProgress(ctx context.Context, deps GetProgressDeps) GetProgressResult {
	result := GetProgressResult{
		Stations:    make([]StationProgress, 0, len(deps.Catalog)),
		AnimationMs: ProgressAnimationMs,
	}

	for _, s := range deps.Catalog {
		p := StationProgress{
			StationID: s.ID,
			Name:      s.Name,
			Score:     quiz.ClampScore(kv.Get(ctx, deps.Store, s.StorageKey, 0), s.MaxScore()),
			MaxScore:  s.MaxScore(),
		}
		result.Stations = append(result.Stations, p)
		result.TotalPoints += p.Score
		result.MaxPoints += p.MaxScore
	}

	result.TotalKm = tracking.SanitizeKm(kv.Get(ctx, deps.Store, tracking.StorageKeyDistance, 0.0))
	result.TotalKmDisplay = tracking.FormatKm(result.TotalKm)
	return result
}
