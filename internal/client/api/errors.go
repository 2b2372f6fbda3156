package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/daybook/internal/common"
)

// StatusError is a non-2xx response from the server.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Detail)
}

// Unwrap maps the status code onto the common sentinels.
func (e *StatusError) Unwrap() []error {
	switch e.Code {
	case http.StatusNotFound:
		return []error{common.ErrorNotFound}
	case http.StatusUnauthorized:
		return []error{common.ErrorUnauthorized, common.ErrTransport}
	case http.StatusConflict:
		return []error{common.ErrorAlreadyExists, common.ErrTransport}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return []error{common.ErrorValidation, common.ErrTransport}
	default:
		return []error{common.ErrTransport}
	}
}

// errorBody is the server's error payload.
type errorBody struct {
	Detail string `json:"detail"`
}

func newStatusError(code int, body []byte) *StatusError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Detail != "" {
		return &StatusError{Code: code, Detail: eb.Detail}
	}
	return &StatusError{Code: code, Detail: strings.TrimSpace(string(body))}
}
