package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// maxBodyBytes caps request bodies; game commands and chat messages are
// tiny, so anything near a megabyte is abuse.
const maxBodyBytes = 1 << 20

// writeJSON marshals v first so an encoding failure never produces a
// half-written body with a 2xx status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	buf, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("Error encoding response")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// decodeJSON reads a JSON request body into v, rejecting oversized bodies.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(v)
}
