// Package pipeline implements the per-connection request state machine:
// parse the request line, consult the cache, on miss open an upstream
// connection, rewrite headers, stream the response to the client while
// staging a copy for admission, and admit the object to cache when
// eligible.
package pipeline

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/go-proxylab/cacheproxy/internal/cache"
	"github.com/go-proxylab/cacheproxy/internal/errorpage"
	"github.com/go-proxylab/cacheproxy/internal/headerwriter"
	"github.com/go-proxylab/cacheproxy/internal/netutil"
	"github.com/go-proxylab/cacheproxy/internal/proxyerr"
	"github.com/go-proxylab/cacheproxy/internal/uriparse"
)

// LineBudget bounds the request line to a size sufficient for typical
// HTTP header lines; a longer request line is rejected as malformed.
// The client header lines relayed to the origin are not length-checked.
const LineBudget = 8192

// readChunkSize is the size of each read from the origin connection
// during the streaming tee. Responses are framed by EOF rather than by
// line structure (HTTP/1.0, Connection: close), so fixed-size reads are
// used instead of line-oriented ones to avoid imposing a line budget on
// arbitrary binary response bodies.
const readChunkSize = 4096

// Pipeline runs one connection's state machine against a shared Cache.
type Pipeline struct {
	cache *cache.Cache
	log   logrus.FieldLogger
	dial  func(network, addr string) (net.Conn, error)
}

// New creates a Pipeline backed by c. A nil dial defaults to net.Dial.
func New(c *cache.Cache, log logrus.FieldLogger, dial func(network, addr string) (net.Conn, error)) *Pipeline {
	if dial == nil {
		dial = net.Dial
	}
	if log == nil {
		log = logrus.New().WithField("component", "pipeline")
	}
	return &Pipeline{cache: c, log: log, dial: dial}
}

// Handle runs the full state machine for one accepted client connection
// and closes it (and any origin connection it opened) before returning,
// on every exit path.
func (p *Pipeline) Handle(conn net.Conn) {
	defer conn.Close()

	client := bufio.NewReaderSize(conn, LineBudget)

	// S0: read the request line.
	line, err := readBoundedLine(client, LineBudget)
	if err != nil {
		if errors.Is(err, io.EOF) && line == "" {
			return // client closed without sending anything: silently close.
		}
		p.respondError(conn, 400, err)
		return
	}

	method, uri, _, ok := splitRequestLine(line)
	if !ok {
		p.respondError(conn, 400, proxyerr.ErrMalformedRequest)
		return
	}

	// S1: method gate.
	if method != "GET" {
		p.log.WithField("method", netutil.SanitizeForLog(method)).Info("rejecting unsupported method")
		p.respondError(conn, 501, proxyerr.ErrUnsupportedMethod)
		return
	}

	// S2: cache probe.
	if body, hit := p.cache.Lookup(uri); hit {
		p.log.WithField("uri", netutil.SanitizeForLog(uri)).Debug("cache hit")
		_, _ = conn.Write(body)
		return
	}

	// S3: parse the URI for the origin request.
	target, err := uriparse.Parse(uri)
	if err != nil {
		p.respondError(conn, 400, err)
		return
	}

	// S4: connect to the origin.
	origin, err := p.dial("tcp", target.Addr())
	if err != nil {
		p.log.WithFields(logrus.Fields{
			"uri":   netutil.SanitizeForLog(uri),
			"error": err,
		}).Warn("upstream connect failure")
		p.respondError(conn, 502, proxyerr.ErrUpstreamConnectFailure)
		return
	}
	defer origin.Close()

	// S5: send the origin request line/Host, then the rewritten headers.
	if _, err := io.WriteString(origin, target.OriginPrelude()); err != nil {
		p.log.WithError(err).Warn("writing origin prelude failed")
		return
	}
	if err := headerwriter.Write(origin, client); err != nil {
		p.log.WithError(err).Warn("writing origin headers failed")
		return
	}

	// S6/S7: stream the response, tee into staging, admit if eligible.
	p.streamAndAdmit(conn, origin, uri)
}

// streamAndAdmit streams the origin response to the client while
// staging a copy for cache admission. A client write failure abandons
// further client writes but keeps draining the origin so an eligible
// object can still be admitted; an origin read failure terminates the
// transfer immediately and skips admission.
func (p *Pipeline) streamAndAdmit(client io.Writer, origin net.Conn, uri string) {
	staging := newStagingBuffer(cache.MaxObjectSize)
	originReader := bufio.NewReaderSize(origin, readChunkSize)
	buf := make([]byte, readChunkSize)
	clientOK := true

	for {
		n, err := originReader.Read(buf)
		if n > 0 {
			staging.write(buf[:n])
			if clientOK {
				if _, werr := client.Write(buf[:n]); werr != nil {
					clientOK = false
					p.log.WithField("uri", netutil.SanitizeForLog(uri)).Debug("client write failure; draining origin")
				}
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				p.log.WithFields(logrus.Fields{
					"uri":   netutil.SanitizeForLog(uri),
					"error": err,
				}).Warn("upstream i/o failure; not admitting")
				return
			}
			break
		}
	}

	if staging.eligible() {
		p.cache.Admit(uri, staging.bytes())
	}
}

func (p *Pipeline) respondError(conn net.Conn, status int, cause error) {
	_ = errorpage.Write(conn, status, netutil.SanitizeForLog(cause.Error()))
}

// readBoundedLine reads a single CRLF- or LF-terminated line from r, up
// to limit bytes. A line that doesn't fit the budget is reported as a
// malformed request rather than silently truncated.
func readBoundedLine(r *bufio.Reader, limit int) (string, error) {
	line, err := r.ReadString('\n')
	if len(line) > limit {
		return "", proxyerr.ErrMalformedRequest
	}
	if err != nil {
		if errors.Is(err, bufio.ErrBufferFull) || len(line) >= limit {
			return "", proxyerr.ErrMalformedRequest
		}
		return line, err
	}
	return line, nil
}

// splitRequestLine parses "METHOD URI VERSION" (optionally CRLF
// terminated) into its three tokens.
func splitRequestLine(line string) (method, uri, version string, ok bool) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return "", "", "", false
	}
	return fields[0], fields[1], fields[2], true
}

// DialTimeout is a convenience net.Dial-compatible function with a
// bounded connect attempt, usable as the Pipeline's dial func when
// callers want origin connects to fail fast rather than block
// indefinitely. A timed-out connect surfaces as an ordinary dial error
// and is reported to the client as an upstream connect failure.
func DialTimeout(timeout time.Duration) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		return net.DialTimeout(network, addr, timeout)
	}
}
