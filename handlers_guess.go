package main

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/TheRealTwizzy/raiderdle/internal/daily"
)

type GuessRequest struct {
	Guess string `json:"guess"`
}

// guessHandler scores a guess for the client's local day. POST takes a JSON
// body; GET reads ?guess= for clients that cannot send one.
func guessHandler(svc *daily.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GuessRequest
		if r.Method == http.MethodPost {
			if err := json.NewDecoder(io.LimitReader(r.Body, 1024)).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_REQUEST")
				return
			}
		} else {
			req.Guess = r.URL.Query().Get("guess")
		}

		res, err := svc.Guess(req.Guess, requestOffset(r.URL.Query()))
		if err != nil {
			writeServiceError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func revealHandler(svc *daily.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Reveal(requestOffset(r.URL.Query())))
	}
}
