package server

import (
	"fmt"
	"io"
	"strconv"

	"github.com/getmockd/promexport/pkg/exposition"
)

// errorBody is sent with the 500 response when no document could be produced.
const errorBody = "Failed to generate metrics\n"

// WriteMetrics writes a complete HTTP/1.0 200 response carrying doc.
// Headers and body are written separately; a failed or short write is
// returned and not retried.
func WriteMetrics(w io.Writer, doc []byte) error {
	header := make([]byte, 0, 160)
	header = append(header, "HTTP/1.0 200 OK\r\n"...)
	header = append(header, "Content-Type: "+exposition.ContentType+"\r\n"...)
	header = append(header, "Content-Length: "...)
	header = strconv.AppendInt(header, int64(len(doc)), 10)
	header = append(header, "\r\nConnection: close\r\n\r\n"...)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	if len(doc) == 0 {
		return nil
	}
	if _, err := w.Write(doc); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// WriteError writes a fixed HTTP/1.0 500 response.
func WriteError(w io.Writer) error {
	resp := "HTTP/1.0 500 Internal Server Error\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Length: " + strconv.Itoa(len(errorBody)) + "\r\n" +
		"Connection: close\r\n" +
		"\r\n" +
		errorBody
	if _, err := io.WriteString(w, resp); err != nil {
		return fmt.Errorf("write error response: %w", err)
	}
	return nil
}
