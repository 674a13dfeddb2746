package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Lllllllleong/storyflow/internal/models"
)

const (
	missingFieldsMessage = "Missing sourceKey or userPrompt in request body."
	maxRequestBodyBytes  = 1 << 20
)

// DecodeStoryRequest decodes a transformation request body. The body may be the
// request object itself, a JSON string holding the serialised object, or a
// proxy envelope {"body": ...} wrapping either. An empty body decodes to an
// empty request.
func DecodeStoryRequest(body []byte) (models.StoryTransformRequest, error) {
	var req models.StoryTransformRequest
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return req, nil
	}

	if body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return req, fmt.Errorf("%w: could not parse JSON string body: %w", ErrInvalidRequest, err)
		}
		return DecodeStoryRequest([]byte(inner))
	}

	var envelope struct {
		models.StoryTransformRequest
		Body json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return req, fmt.Errorf("%w: could not parse JSON: %w", ErrInvalidRequest, err)
	}
	if envelope.SourceKey == "" && envelope.UserPrompt == "" && len(envelope.Body) > 0 && string(envelope.Body) != "null" {
		return DecodeStoryRequest(envelope.Body)
	}
	return envelope.StoryTransformRequest, nil
}

// HandleHTTP is the HTTP surface of the transformer: 200 with the artifact keys,
// 400 with {"error"} for requests missing required fields, 413 for bodies over
// maxRequestBodyBytes, 500 otherwise.
func (f *TransformerFunction) HandleHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, models.ErrorResponse{Error: "Method not allowed."})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		slog.Warn("Request body too large", "limit", tooLarge.Limit)
		writeJSON(w, http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: fmt.Sprintf("Request body exceeds %d bytes.", tooLarge.Limit)})
		return
	}
	if err != nil {
		slog.Warn("Could not read request body", "error", err)
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Bad Request: could not read body"})
		return
	}

	req, err := DecodeStoryRequest(body)
	if err != nil {
		slog.Warn("Could not decode request body", "error", err)
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Bad Request: could not parse JSON"})
		return
	}

	res, err := f.Process(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: missingFieldsMessage})
			return
		}
		// The specific error is already logged inside the Process method.
		http.Error(w, "Internal Server Error: processing failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
