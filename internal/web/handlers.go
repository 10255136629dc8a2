package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/roster/internal/core"
)

// maxJSONBody caps request bodies of the JSON endpoints.
const maxJSONBody = 1 << 20

// readJSON decodes the request body into v. Numbers are kept as json.Number
// so RMs survive exactly.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return fmt.Errorf("%w: empty request body", core.ErrInvalidInput)
		}
		return fmt.Errorf("%w: malformed JSON: %v", core.ErrInvalidInput, err)
	}
	return nil
}

// rawID turns a decoded JSON value into the string form ParseID accepts.
func rawID(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// markUnsaved flags a response whose change is held in memory but not yet
// written to the roster source.
func (s *Server) markUnsaved(w http.ResponseWriter, r *http.Request) {
	if dirty, err := s.service.Dirty(r.Context()); err == nil && dirty {
		w.Header().Set("X-Roster-Unsaved", "true")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

type studentsResponse struct {
	Students []core.Student `json:"students"`
	Count    int            `json:"count"`
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.service.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, studentsResponse{Students: students, Count: len(students)})
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}

	st, err := s.service.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	students, err := s.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, studentsResponse{Students: students, Count: len(students)})
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var threshold float64
	if v := strings.TrimSpace(q.Get("threshold")); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			fail(w, r, fmt.Errorf("%w: threshold %q is not a number", core.ErrInvalidInput, v))
			return
		}
		threshold = t
	}

	res, err := s.service.FindSimilar(r.Context(), q.Get("name"), threshold)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.Stats(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

type addStudentRequest struct {
	Name string `json:"name"`
	ID   any    `json:"id"`
}

func (s *Server) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	var req addStudentRequest
	if err := readJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}

	st, err := s.service.Add(r.Context(), req.Name, rawID(req.ID))
	if err != nil {
		fail(w, r, err)
		return
	}
	s.markUnsaved(w, r)
	writeJSON(w, r, http.StatusCreated, st)
}

type removeRequest struct {
	IDs []any `json:"ids"`
}

func (s *Server) handleRemoveStudents(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if err := readJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if len(req.IDs) == 0 {
		fail(w, r, fmt.Errorf("%w: ids is required", core.ErrInvalidInput))
		return
	}

	ids := make([]int64, 0, len(req.IDs))
	for _, v := range req.IDs {
		id, err := core.ParseID(rawID(v))
		if err != nil {
			fail(w, r, err)
			return
		}
		ids = append(ids, id)
	}

	n, err := s.service.Remove(r.Context(), ids)
	if err != nil {
		fail(w, r, err)
		return
	}
	s.markUnsaved(w, r)
	writeJSON(w, r, http.StatusOK, map[string]int{"removed": n})
}

type updateCellRequest struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

func (s *Server) handleUpdateCell(w http.ResponseWriter, r *http.Request) {
	var req updateCellRequest
	if err := readJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}

	col, err := core.ParseColumn(req.Column)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := s.service.UpdateCell(r.Context(), req.Row, col, req.Value); err != nil {
		fail(w, r, err)
		return
	}
	s.markUnsaved(w, r)
	w.WriteHeader(http.StatusNoContent)
}

type sortRequest struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc"`
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := readJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}

	col, err := core.ParseColumn(req.Column)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := s.service.Sort(r.Context(), col, req.Desc); err != nil {
		fail(w, r, err)
		return
	}
	s.markUnsaved(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Save(r.Context()); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Reload(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}
