package sse

import (
	"bytes"
	"strings"
)

// frame is one encoded SSE event. name is kept beside the bytes so a pending
// frame can be replaced by a newer one of the same name.
type frame struct {
	name    string
	payload []byte
}

func newFrame(name, data string) frame {
	return frame{name: name, payload: encodeFrame(name, data)}
}

// encodeFrame writes an event in text/event-stream form. Each data line gets
// its own "data: " prefix and CR characters are dropped.
func encodeFrame(name, data string) []byte {
	var b bytes.Buffer
	b.WriteString("event: ")
	b.WriteString(name)
	b.WriteByte('\n')
	for _, line := range dataLines(data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.Bytes()
}

func dataLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
