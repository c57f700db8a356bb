package web

import (
	"net/http"
	"strconv"

	"toursights/internal/adapters/http/view"
	"toursights/internal/adapters/storage/kv"
	"toursights/internal/application/orchestrators"
	"toursights/internal/domain/quiz"
)

// stationMarker is what the map needs to place a station.
type stationMarker struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	MaxScore  int     `json:"maxScore"`
	Questions int     `json:"questions"`
}

type stationDetail struct {
	stationMarker
	IntroHTML   string   `json:"introHtml"`
	QuestionIDs []string `json:"questionIds"`
	Score       int      `json:"score"`
}

type submitQuizRequest struct {
	Answers map[string]string `json:"answers"`
}

type submitQuizResponse struct {
	Result   quiz.Result       `json:"result"`
	Message  string            `json:"message"`
	Elements view.Elements     `json:"elements"`
	Feedback map[string]string `json:"feedback"`
}

func markerFor(st quiz.Station) stationMarker {
	return stationMarker{
		ID:        st.ID,
		Name:      st.Name,
		Lat:       st.Lat,
		Lng:       st.Lng,
		MaxScore:  st.MaxScore(),
		Questions: len(st.Questions),
	}
}

// handleListStations returns the map markers of every station.
func (s *server) handleListStations(w http.ResponseWriter, r *http.Request) {
	markers := make([]stationMarker, 0, len(s.deps.Catalog))
	for _, st := range s.deps.Catalog {
		markers = append(markers, markerFor(st))
	}
	writeJSON(w, http.StatusOK, markers)
}

// stationFromPath resolves {id}; unknown or non-numeric ids are quiz.ErrUnknownStation.
func (s *server) stationFromPath(r *http.Request) (quiz.Station, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return quiz.Station{}, quiz.ErrUnknownStation
	}
	return s.deps.Catalog.Station(id)
}

func (s *server) handleGetStation(w http.ResponseWriter, r *http.Request) {
	p := printer(w, r)
	st, err := s.stationFromPath(r)
	if err != nil {
		writeDomainError(w, r, p, err, "")
		return
	}
	store, ok := s.withStore(w, r)
	if !ok {
		return
	}

	ids := make([]string, len(st.Questions))
	for i, q := range st.Questions {
		ids[i] = q.ID
	}
	writeJSON(w, http.StatusOK, stationDetail{
		stationMarker: markerFor(st),
		IntroHTML:     s.intros[st.ID],
		QuestionIDs:   ids,
		Score:         quiz.ClampScore(kv.Get(r.Context(), store, st.StorageKey, 0), st.MaxScore()),
	})
}

// handleSubmitQuiz grades {"answers": {"q1": "b", ...}} and stores the score.
func (s *server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	p := printer(w, r)
	st, err := s.stationFromPath(r)
	if err != nil {
		writeDomainError(w, r, p, err, "")
		return
	}
	store, ok := s.withStore(w, r)
	if !ok {
		return
	}

	var req submitQuizRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeMessage(w, r, p, http.StatusBadRequest, view.MsgBadRequest, "")
		return
	}

	result, err := orchestrators.ExecuteSubmitQuiz(r.Context(), orchestrators.SubmitQuizInput{
		StationID: st.ID,
		Answers:   req.Answers,
	}, orchestrators.SubmitQuizDeps{Store: store, Catalog: s.deps.Catalog})
	if err != nil {
		writeDomainError(w, r, p, err, "")
		return
	}
	s.deps.Metrics.QuizSubmitted(result.StationID, result.Score)

	elements, feedback := view.QuizElements(p, result)
	writeJSON(w, http.StatusOK, submitQuizResponse{
		Result:   result,
		Message:  elements[view.StationScoreMessageElement(result.StationID)],
		Elements: elements,
		Feedback: feedback,
	})
}
