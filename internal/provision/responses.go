package provision

import (
	"encoding/json"
	"net/http"
	"time"
)

type response struct {
	Code        int    `json:"code"`
	CurrentTime int64  `json:"currentTime"`
	Text        string `json:"text"`
	Data        any    `json:"data,omitempty"`
}

func (s *Server) sendResponse(w http.ResponseWriter, code int, text string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	resp := response{
		Code:        code,
		CurrentTime: time.Now().UnixMilli(),
		Text:        text,
		Data:        data,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("encode response failed", "error", err)
	}
}

func (s *Server) sendOK(w http.ResponseWriter, data any) {
	s.sendResponse(w, http.StatusOK, "OK", data)
}

func (s *Server) badRequestResponse(w http.ResponseWriter, text string) {
	s.sendResponse(w, http.StatusBadRequest, text, nil)
}

func (s *Server) serverErrorResponse(w http.ResponseWriter, err error) {
	s.logger.Error("server error", "error", err)
	s.sendResponse(w, http.StatusInternalServerError, "internal error", nil)
}
