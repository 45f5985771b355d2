package envelope

import (
	"encoding/json"
	"net/http"
)

// Write renders reply in the given convention and writes it as JSON.
func Write(w http.ResponseWriter, conv Convention, reply *Reply) {
	if reply == nil {
		reply = OK(nil)
	}
	WriteJSON(w, reply.Status(), reply.Render(conv))
}

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Encode renders reply and returns the JSON bytes, for callers that build
// an *http.Response themselves.
func Encode(conv Convention, reply *Reply) ([]byte, error) {
	if reply == nil {
		reply = OK(nil)
	}
	return json.Marshal(reply.Render(conv))
}
