package server

import (
	"encoding/json"
	"io"
	"net/http"
)

// Request bodies are small JSON documents; cap the decoder so a client
// cannot stream an unbounded payload.
const maxRequestBody = 1 << 20

func readJSON(body io.Reader, dest any) error {
	dec := json.NewDecoder(io.LimitReader(body, maxRequestBody))
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
