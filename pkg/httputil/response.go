// Package httputil provides shared HTTP utilities for consistent response handling.
package httputil

import (
	"net/http"
	"strconv"
)

// PlainText is the content type of plain responses.
const PlainText = "text/plain"

// WriteBody writes a complete response with an explicit Content-Length.
// The write error is returned so callers can log it; the status is already
// sent at that point.
func WriteBody(w http.ResponseWriter, status int, contentType string, body []byte) error {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	if len(body) == 0 {
		return nil
	}
	_, err := w.Write(body)
	return err
}

// WriteText writes a text/plain response.
func WriteText(w http.ResponseWriter, status int, text string) error {
	return WriteBody(w, status, PlainText, []byte(text))
}
