// Package headerwriter rewrites a client's request headers into the
// fixed header block this proxy always sends to an origin server.
package headerwriter

import (
	"bufio"
	"io"
	"strings"
)

// FixedHeaders are emitted before any client header is relayed, in this
// order, regardless of what the client sent.
var FixedHeaders = []string{
	"User-Agent: Mozilla/5.0 (X11; Linux x86_64; rv:10.0.3) Gecko/20120305 Firefox/10.0.3\r\n",
	"Connection: close\r\n",
	"Proxy-Connection: close\r\n",
}

// suppressedPrefixes are the header lines the proxy owns: the client's
// versions of these are dropped rather than relayed, since the fixed
// headers above (plus the Host line from the parsed URI) supersede them.
var suppressedPrefixes = []string{"Host:", "User-Agent:", "Connection:", "Proxy-Connection:"}

// Write emits FixedHeaders to dst, then relays every line read from
// headers (a CRLF-terminated, blank-line-ended block) except lines
// matching a suppressed prefix, then terminates the block with a final
// CRLF. The client's body, if any, is never read or forwarded: this
// proxy only ever issues GET.
func Write(dst io.Writer, headers *bufio.Reader) error {
	for _, h := range FixedHeaders {
		if _, err := io.WriteString(dst, h); err != nil {
			return err
		}
	}

	for {
		line, err := headers.ReadString('\n')
		if line == "" || line == "\r\n" || line == "\n" {
			break
		}
		if !suppressed(line) {
			if _, werr := io.WriteString(dst, line); werr != nil {
				return werr
			}
		}
		if err != nil {
			break
		}
	}

	_, err := io.WriteString(dst, "\r\n")
	return err
}

func suppressed(line string) bool {
	for _, prefix := range suppressedPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
