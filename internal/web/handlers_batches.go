package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/storage"
)

type candidateJSON struct {
	Row  int    `json:"row"`
	Name string `json:"name"`
	ID   any    `json:"id"`
}

type validateRequest struct {
	Rows []candidateJSON `json:"rows"`
}

// handleValidate checks JSON candidate rows. Rows without a row number are
// numbered by their position, starting at 1.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := readJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if err := s.checkRowCount(len(req.Rows)); err != nil {
		fail(w, r, err)
		return
	}

	rows := make([]core.CandidateRow, len(req.Rows))
	for i, c := range req.Rows {
		row := c.Row
		if row <= 0 {
			row = i + 1
		}
		rows[i] = core.CandidateRow{Row: row, Name: c.Name, RawID: rawID(c.ID)}
	}

	s.validate(w, r, rows)
}

// handleValidateUpload checks the candidate rows of an uploaded .xlsx or
// .csv file sent as the multipart field "file".
func (s *Server) handleValidateUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			fail(w, r, fmt.Errorf("%w: limit is %d bytes", storage.ErrFileTooLarge, maxSize))
			return
		}
		fail(w, r, fmt.Errorf("%w: file is required: %v", core.ErrInvalidInput, err))
		return
	}
	defer file.Close()

	rows, err := storage.ReadCandidates(header.Filename, file, maxSize)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := s.checkRowCount(len(rows)); err != nil {
		fail(w, r, err)
		return
	}

	s.validate(w, r, rows)
}

func (s *Server) checkRowCount(n int) error {
	if max := s.cfg.Upload.MaxRows; max > 0 && n > max {
		return fmt.Errorf("%w: %d rows, limit is %d", storage.ErrFileTooLarge, n, max)
	}
	return nil
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request, rows []core.CandidateRow) {
	batch, err := s.service.Validate(r.Context(), rows)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, batch)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Commit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	if !res.Saved {
		w.Header().Set("X-Roster-Unsaved", "true")
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Discard(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
