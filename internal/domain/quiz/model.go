package quiz

import (
	"errors"
	"fmt"
)

// Feedback constants
const (
	FeedbackCorrect    = "correct"
	FeedbackIncorrect  = "incorrect"
	FeedbackUnanswered = "unanswered"
)

// Domain errors
var (
	ErrUnknownStation     = errors.New("unknown station")
	ErrNoQuestions        = errors.New("station must have at least one question")
	ErrDuplicateQuestion  = errors.New("question ids must be unique within a station")
	ErrEmptySolution      = errors.New("every question needs a correct choice")
	ErrMissingStorageKey  = errors.New("station storage key is required")
	ErrInvalidStationID   = errors.New("station id must be positive")
	ErrDuplicateStationID = errors.New("station ids must be unique")
)

// Question pairs a question id with the letter of its correct choice.
type Question struct {
	ID      string
	Correct string
}

// Station is the per-station quiz configuration.
// Questions are scored in the order given here.
type Station struct {
	ID         int
	Name       string
	Lat        float64
	Lng        float64
	Intro      string // markdown
	StorageKey string
	Questions  []Question
}

// QuestionFeedback is the outcome for one question.
type QuestionFeedback struct {
	QuestionID string `json:"questionId"`
	Feedback   string `json:"feedback"`
}

// Result is the scored submission for one station.
type Result struct {
	StationID int                `json:"stationId"`
	Score     int                `json:"score"`
	MaxScore  int                `json:"maxScore"`
	Feedback  []QuestionFeedback `json:"feedback"`
}

// StorageKeyFor returns the key a station's score is stored under.
func StorageKeyFor(stationID int) string {
	return fmt.Sprintf("ts_station%d_points", stationID)
}

// MaxScore is the number of questions of the station.
// INVARIANT: Station fields are not mutated
func (s Station) MaxScore() int {
	return len(s.Questions)
}

// Validate checks the station configuration.
// PRE: Station struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Station) Validate() error {
	if s.ID <= 0 {
		return ErrInvalidStationID
	}
	if s.StorageKey == "" {
		return ErrMissingStorageKey
	}
	if len(s.Questions) == 0 {
		return ErrNoQuestions
	}
	seen := make(map[string]bool, len(s.Questions))
	for _, q := range s.Questions {
		if seen[q.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateQuestion, q.ID)
		}
		seen[q.ID] = true
		if q.Correct == "" {
			return fmt.Errorf("%w: %s", ErrEmptySolution, q.ID)
		}
	}
	return nil
}

// Score grades a submission. A missing or empty answer counts as unanswered;
// otherwise the choice must equal the solution exactly (case-sensitive).
// Answers for question ids the station does not know are ignored.
// PRE: station has been validated
// POST: 0 <= Score <= MaxScore; one feedback entry per question, in question order
// INVARIANT: Station fields are not mutated
func (s Station) Score(answers map[string]string) Result {
	result := Result{
		StationID: s.ID,
		MaxScore:  s.MaxScore(),
		Feedback:  make([]QuestionFeedback, 0, len(s.Questions)),
	}
	for _, q := range s.Questions {
		fb := QuestionFeedback{QuestionID: q.ID}
		selected, ok := answers[q.ID]
		switch {
		case !ok || selected == "":
			fb.Feedback = FeedbackUnanswered
		case selected == q.Correct:
			fb.Feedback = FeedbackCorrect
			result.Score++
		default:
			fb.Feedback = FeedbackIncorrect
		}
		result.Feedback = append(result.Feedback, fb)
	}
	return result
}

// FeedbackFor returns the feedback for one question, or "" if the question is unknown.
// INVARIANT: Result fields are not mutated
func (r Result) FeedbackFor(questionID string) string {
	for _, fb := range r.Feedback {
		if fb.QuestionID == questionID {
			return fb.Feedback
		}
	}
	return ""
}

// ClampScore bounds a stored score to [0, max].
func ClampScore(score, max int) int {
	if score < 0 {
		return 0
	}
	if score > max {
		return max
	}
	return score
}

// Catalog is an ordered set of stations.
type Catalog []Station

// Station returns the station with the given id.
// POST: Returns ErrUnknownStation if absent
func (c Catalog) Station(id int) (Station, error) {
	for _, s := range c {
		if s.ID == id {
			return s, nil
		}
	}
	return Station{}, fmt.Errorf("%w: %d", ErrUnknownStation, id)
}

// Validate checks every station and that ids are unique.
// POST: Returns nil if valid, error otherwise
func (c Catalog) Validate() error {
	seen := make(map[int]bool, len(c))
	for i := range c {
		if err := c[i].Validate(); err != nil {
			return fmt.Errorf("station %d: %w", c[i].ID, err)
		}
		if seen[c[i].ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateStationID, c[i].ID)
		}
		seen[c[i].ID] = true
	}
	return nil
}
