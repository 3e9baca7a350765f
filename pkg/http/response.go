package http

import (
	"encoding/json"
	"net/http"
)

// Envelope wraps every successful response body.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
}

// WriteJSON writes payload as JSON with the given status code
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		// Headers are already sent; nothing useful to do with an encode error.
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// WriteOK writes a 200 success envelope around data.
func WriteOK(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// WriteCreated writes a 201 success envelope around data.
func WriteCreated(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// WritePage writes a 200 success envelope with a pagination block.
func WritePage(w http.ResponseWriter, data, pagination interface{}) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Pagination: pagination})
}

// WriteMessage writes a 200 success envelope carrying only a message.
func WriteMessage(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: message})
}
