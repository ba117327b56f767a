package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"blogapi/app/apierror"
)

// StandardHeaders returns a fresh copy of the headers every response carries.
func StandardHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": "GET,POST,PUT,DELETE,OPTIONS",
	}
}

// JSON encodes v as the response body.
func JSON(status int, v any) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, apierror.Internal(fmt.Errorf("encode response: %w", err))
	}
	return &Response{StatusCode: status, Headers: StandardHeaders(), Body: body}, nil
}

func NoContent() *Response {
	return &Response{StatusCode: http.StatusNoContent, Headers: StandardHeaders()}
}

// Preflight answers an OPTIONS request.
func Preflight() *Response {
	return &Response{StatusCode: http.StatusOK, Headers: StandardHeaders()}
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse maps err to its status and the {"error": ...} envelope.
// Internal errors never reveal their cause.
func ErrorResponse(err error) *Response {
	body, _ := json.Marshal(errorBody{Error: apierror.PublicMessage(err)})
	return &Response{
		StatusCode: apierror.KindOf(err).Status(),
		Headers:    StandardHeaders(),
		Body:       body,
	}
}

// NotFoundResponse is the answer for paths no route matches.
func NotFoundResponse() *Response {
	return ErrorResponse(apierror.NotFound("Endpoint"))
}
