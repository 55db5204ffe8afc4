package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/QuangTung97/buddysim"
	"github.com/QuangTung97/buddysim/allocator"
)

type createRequest struct {
	Capacity int `json:"capacity"`
}

type allocateRequest struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type freeRequest struct {
	Name string `json:"name"`
}

type resetRequest struct {
	Capacity int `json:"capacity"`
}

type operationResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Steps   int    `json:"steps"`
}

type sessionResponse struct {
	ID        string               `json:"id"`
	Capacity  int                  `json:"capacity"`
	Steps     int                  `json:"steps"`
	Cursor    int                  `json:"cursor"`
	Occupants []allocator.Occupant `json:"occupants"`
	Usage     allocator.Usage      `json:"usage"`
}

func newSessionResponse(sess *buddysim.Session) sessionResponse {
	a := sess.Allocator()
	occupants := a.ListOccupants()
	if occupants == nil {
		occupants = []allocator.Occupant{}
	}
	return sessionResponse{
		ID:        sess.ID(),
		Capacity:  a.Capacity(),
		Steps:     len(a.History()),
		Cursor:    sess.Player().Index(),
		Occupants: occupants,
		Usage:     a.Stats(),
	}
}

func newOperationResponse(sess *buddysim.Session, ok bool) operationResponse {
	return operationResponse{
		OK:      ok,
		Message: sess.LastMessage(),
		Steps:   len(sess.Allocator().History()),
	}
}

var errBadCapacity = fmt.Errorf("capacity must be > 0 and <= %d", allocator.MaxCapacity)

func validCapacity(capacity int) bool {
	return capacity >= 0 && capacity <= allocator.MaxCapacity
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}
	if !validCapacity(req.Capacity) {
		writeError(w, http.StatusBadRequest, errBadCapacity)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.createSessionLocked(req.Capacity)
	writeJSON(w, http.StatusCreated, newSessionResponse(sess))
}

func (s *Server) listSessions(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.recent.GetLRUList()
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *buddysim.Session) {
		writeJSON(w, http.StatusOK, newSessionResponse(sess))
	})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := mux.Vars(r)["id"]
	if !s.recent.Delete(id) {
		writeError(w, http.StatusNotFound, ErrSessionNotFound)
		return
	}
	delete(s.sessions, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *buddysim.Session) {
		writeJSON(w, http.StatusOK, sess.Allocator().CurrentState())
	})
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *buddysim.Session) {
		writeJSON(w, http.StatusOK, sess.Allocator().Layout())
	})
}

func (s *Server) getOccupants(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *buddysim.Session) {
		occupants := sess.Allocator().ListOccupants()
		if occupants == nil {
			occupants = []allocator.Occupant{}
		}
		writeJSON(w, http.StatusOK, occupants)
	})
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *buddysim.Session) {
		writeJSON(w, http.StatusOK, sess.Allocator().History())
	})
}

// getHistoryEntry also moves the session's playback cursor to the step
func (s *Server) getHistoryEntry(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *buddysim.Session) {
		step, err := strconv.Atoi(mux.Vars(r)["step"])
		if err != nil || step < 0 || step >= sess.Player().Len() {
			writeError(w, http.StatusNotFound, fmt.Errorf("step %q not found", mux.Vars(r)["step"]))
			return
		}

		sess.Player().Seek(step)
		entry, _ := sess.Player().Current()
		writeJSON(w, http.StatusOK, entry)
	})
}

func (s *Server) allocate(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}

	s.withSession(w, r, func(sess *buddysim.Session) {
		ok := sess.Allocate(req.Name, req.Size)
		writeJSON(w, http.StatusOK, newOperationResponse(sess, ok))
	})
}

func (s *Server) free(w http.ResponseWriter, r *http.Request) {
	var req freeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}

	s.withSession(w, r, func(sess *buddysim.Session) {
		ok := sess.Free(req.Name)
		writeJSON(w, http.StatusOK, newOperationResponse(sess, ok))
	})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}
	if !validCapacity(req.Capacity) {
		writeError(w, http.StatusBadRequest, errBadCapacity)
		return
	}

	s.withSession(w, r, func(sess *buddysim.Session) {
		sess.Reset(req.Capacity)
		writeJSON(w, http.StatusOK, newOperationResponse(sess, true))
	})
}
