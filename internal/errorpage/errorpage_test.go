package errorpage

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteKnownStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status    int
		wantShort string
	}{
		{400, "Bad Request"},
		{501, "Not Implemented"},
		{502, "Bad Gateway"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.wantShort, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, tt.status, "something went wrong"))

			out := buf.String()
			require.True(t, strings.HasPrefix(out, "HTTP/1.0"))
			require.Contains(t, out, tt.wantShort)
			require.Contains(t, out, "Content-type: text/html")
			require.Contains(t, out, "something went wrong")
		})
	}
}

func TestWriteUnknownStatusFallsBackToGenericMessage(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, 418, "teapot"))

	out := buf.String()
	require.Contains(t, out, "HTTP/1.0 418")
	require.Contains(t, out, "Error")
	require.Contains(t, out, "teapot")
}

func TestWriteContentLengthMatchesBody(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, 501, "POST"))

	out := buf.String()
	headerEnd := strings.Index(out, "\r\n\r\n")
	require.GreaterOrEqual(t, headerEnd, 0)
	body := out[headerEnd+4:]

	var contentLength int
	for _, line := range strings.Split(out[:headerEnd], "\r\n") {
		if rest, ok := strings.CutPrefix(line, "Content-length: "); ok {
			n, err := strconv.Atoi(rest)
			require.NoError(t, err)
			contentLength = n
		}
	}
	require.Equal(t, len(body), contentLength)
}
