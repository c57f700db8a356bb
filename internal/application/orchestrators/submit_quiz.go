package orchestrators

import (
	"context"
	"log/slog"

	"toursights/internal/domain/quiz"
)

// SubmitQuizInput carries a station id and the selected choice per question id.
type SubmitQuizInput struct {
	StationID int
	Answers   map[string]string
}

// SubmitQuizDeps holds dependencies for SubmitQuiz.
type SubmitQuizDeps struct {
	Store   KVStore
	Catalog quiz.Catalog
}

// ExecuteSubmitQuiz grades a submission and stores the score under the station's key.
// The stored score is overwritten on every submission; there is no best-score policy.
// PRE: deps.Catalog has been validated
// POST: the station key holds Result.Score
func ExecuteSubmitQuiz(ctx context.Context, input SubmitQuizInput, deps SubmitQuizDeps) (quiz.Result, error) {
	station, err := deps.Catalog.Station(input.StationID)
	if err != nil {
		return quiz.Result{}, err
	}

	result := station.Score(input.Answers)
	deps.Store.Set(ctx, station.StorageKey, result.Score)

	slog.Info("quiz_submitted",
		"scope", deps.Store.Scope(),
		"station", station.ID,
		"score", result.Score,
		"max_score", result.MaxScore,
	)
	return result, nil
}
