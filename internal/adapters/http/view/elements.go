package view

import (
	"fmt"

	"golang.org/x/text/message"

	"toursights/internal/application/orchestrators"
	"toursights/internal/application/projections"
	"toursights/internal/domain/quiz"
	"toursights/internal/domain/user"
)

// Element ids of the tour pages.
const (
	ElementDistance        = "distance-value"
	ElementTotalKilometers = "total-kilometers"
	ElementCurrentUser     = "current-user-info"
	ElementRegisterMessage = "register-message"
	ElementLoginMessage    = "login-message"
	ElementTrackingMessage = "tracking-message"
)

// Elements maps page element ids to their display text.
type Elements map[string]string

// StationPointsElement returns the progress page element of a station's score.
func StationPointsElement(stationID int) string {
	return fmt.Sprintf("station%d-points", stationID)
}

// StationScoreMessageElement returns the station page element of the score sentence.
func StationScoreMessageElement(stationID int) string {
	return fmt.Sprintf("station%d-score-message", stationID)
}

// FeedbackText localizes a per-question feedback value.
func FeedbackText(p *message.Printer, feedback string) string {
	switch feedback {
	case quiz.FeedbackCorrect:
		return p.Sprintf(MsgFeedbackCorrect)
	case quiz.FeedbackIncorrect:
		return p.Sprintf(MsgFeedbackIncorrect)
	default:
		return p.Sprintf(MsgFeedbackUnanswered)
	}
}

// QuizElements renders a graded submission: the score sentence, plus the
// feedback text per question id for the [data-feedback-for] markers.
func QuizElements(p *message.Printer, r quiz.Result) (Elements, map[string]string) {
	feedback := make(map[string]string, len(r.Feedback))
	for _, fb := range r.Feedback {
		feedback[fb.QuestionID] = FeedbackText(p, fb.Feedback)
	}
	return Elements{
		StationScoreMessageElement(r.StationID): p.Sprintf(MsgQuizScore, r.Score, r.MaxScore),
	}, feedback
}

// ProgressElements renders the progress page counters.
func ProgressElements(res projections.GetProgressResult) Elements {
	el := Elements{ElementTotalKilometers: res.TotalKmDisplay}
	for _, s := range res.Stations {
		el[StationPointsElement(s.StationID)] = fmt.Sprint(s.Score)
	}
	return el
}

// TrackingElements renders the distance counter.
func TrackingElements(st orchestrators.TrackingStatus) Elements {
	return Elements{ElementDistance: st.Display}
}

// CurrentUserText renders the signed-in line, e.g. "Sie sind als ana (student, 3B) angemeldet".
func CurrentUserText(p *message.Printer, s user.Session, ok bool) string {
	if !ok {
		return p.Sprintf(MsgSessionNone)
	}
	detail := s.Role
	if s.Class != "" {
		detail += ", " + s.Class
	}
	return p.Sprintf(MsgSessionCurrent, s.Username, detail)
}
