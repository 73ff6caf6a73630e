package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/faqbot/core"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response     string  `json:"response"`
	Confidence   float32 `json:"confidence"`
	ResponseTime float64 `json:"response_time"`
}

type errorResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

type healthResponse struct {
	Status     string `json:"status"`
	Questions  int    `json:"questions"`
	Categories int    `json:"categories"`
}

// handleChat answers one chat message and logs the exchange.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Response: "Please provide a message.",
			Error:    "invalid_request",
		})
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Response: "Please provide a message.",
			Error:    "empty_message",
		})
		return
	}

	start := time.Now()
	response := s.matcher.Respond(r.Context(), message)
	elapsed := time.Since(start)

	s.logExchange(message, response.Answer, response.Confidence, response.Source, response.Question)

	writeJSON(w, http.StatusOK, chatResponse{
		Response:     response.Answer,
		Confidence:   response.Confidence,
		ResponseTime: elapsed.Seconds(),
	})
}

// handleHealth reports service status and corpus size.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "healthy",
		Questions:  s.corpus.Len(),
		Categories: s.corpus.Categories(),
	})
}

// logExchange writes the exchange to storage on the worker pool. The write
// uses its own context so it survives the request ending.
func (s *Server) logExchange(query, answer string, confidence float32, source core.MatchSource, question string) {
	if s.exchanges == nil {
		return
	}

	exchange := &core.Exchange{
		Query:      query,
		Answer:     answer,
		Confidence: confidence,
		Source:     source,
		Question:   question,
		CreatedAt:  time.Now().UTC(),
	}

	err := s.logPool.Submit(func() {
		if _, err := s.exchanges.AddExchanges(context.Background(), exchange); err != nil {
			s.logger.Error("error logging exchange", "err", err)
		}
	})
	if err != nil {
		s.logger.Error("error submitting exchange log task", "err", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already written; an encode error here is terminal
	// for the response.
	_ = json.NewEncoder(w).Encode(body)
}
