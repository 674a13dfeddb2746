package services

import "errors"

var (
	// ErrInvalidRequest marks failures the caller can fix; HTTP adapters map it to 400.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmptyModelResponse is returned when a model call yields no text.
	ErrEmptyModelResponse = errors.New("empty response from model")
	// ErrMalformedModelOutput is returned when model output does not have the required shape.
	ErrMalformedModelOutput = errors.New("malformed model output")
	// ErrUnsupportedEvent is returned for upload events carrying no object reference.
	ErrUnsupportedEvent = errors.New("unsupported storage event")
)
