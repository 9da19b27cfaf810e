// Package errorpage formats the small, fixed-shape HTML error bodies
// this proxy returns to clients for unsupported methods, malformed
// requests, and upstream connect failures.
package errorpage

import (
	"fmt"
	"io"
)

// page describes one status the proxy can surface.
type page struct {
	short string
	long  string
}

var pages = map[int]page{
	400: {short: "Bad Request", long: "Your browser sent a request this proxy could not parse."},
	501: {short: "Not Implemented", long: "This proxy does not support the requested method."},
	502: {short: "Bad Gateway", long: "This proxy could not connect to the requested origin server."},
}

// Write formats and writes an HTTP/1.0 status line, a Content-type
// header, and an HTML body naming status, a short/long message, and
// cause, to dst. cause is included verbatim in the body and so should
// already be sanitized for safe display.
func Write(dst io.Writer, status int, cause string) error {
	p, ok := pages[status]
	if !ok {
		p = page{short: "Error", long: "An error occurred while processing your request."}
	}

	body := fmt.Sprintf(
		"<html><head><title>%d %s</title></head>\r\n"+
			"<body>\r\n<h1>%s</h1>\r\n%s\r\n<p>Cause: %s</p>\r\n"+
			"<hr>\r\n<address>cacheproxy</address>\r\n</body></html>\r\n",
		status, p.short, p.short, p.long, cause,
	)

	head := fmt.Sprintf(
		"HTTP/1.0 %d %s\r\nContent-type: text/html\r\nContent-length: %d\r\n\r\n",
		status, p.short, len(body),
	)

	if _, err := io.WriteString(dst, head); err != nil {
		return err
	}
	_, err := io.WriteString(dst, body)
	return err
}
