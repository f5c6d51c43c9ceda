// Package codec translates between the cluster's channel.k8s.io binary
// framing and the browser's base64-tagged text framing, per spec.md §4.4.
// Grounded on original_source's crates/pod_exec/src/msg_handle.rs for the
// channel-prefix constants and on the teacher's terse per-frame error
// handling style: malformed input degrades to an empty/dropped frame, it
// never panics or propagates an error that would tear down the session.
package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"

	"github.com/kube-exec/bridge/internal/applog"
)

var log = applog.New("Codec")

// Cluster-side channel prefix bytes, per spec.md §3/§4.4.
const (
	ChanStdin  byte = 0x00
	ChanStdout byte = 0x01
	ChanStderr byte = 0x02
	ChanError  byte = 0x03
	ChanResize byte = 0x04
)

// Browser-side tag bytes, per spec.md §4.4.
const (
	TagStdin  = '0'
	TagResize = '9'
	TagStdout = '1'
)

type resizeIn struct {
	Type string `json:"type"`
	Data struct {
		Rows    int `json:"rows"`
		Columns int `json:"columns"`
	} `json:"data"`
}

type resizeOut struct {
	Width  int `json:"Width"`
	Height int `json:"Height"`
}

// EncodeBrowserToCluster implements spec.md §4.4's encodeBrowserToCluster.
// It never returns an error: malformed base64 or JSON degrades to a frame
// carrying only the channel byte, preserving the session.
func EncodeBrowserToCluster(text string) []byte {
	if len(text) == 0 {
		return nil
	}

	tag := text[0]
	rest := text[1:]

	if tag == TagResize {
		return encodeResize(rest)
	}
	return encodeStdin(rest)
}

func encodeStdin(rest string) []byte {
	decoded, err := base64.StdEncoding.DecodeString(rest)
	if err != nil {
		log.Debug("stdin frame: bad base64, dropping payload: %v", err)
		return []byte{ChanStdin}
	}
	return append([]byte{ChanStdin}, decoded...)
}

func encodeResize(rest string) []byte {
	decoded, err := base64.StdEncoding.DecodeString(rest)
	if err != nil {
		log.Debug("resize frame: bad base64, dropping: %v", err)
		return []byte{ChanResize}
	}

	var in resizeIn
	if err := json.Unmarshal(decoded, &in); err != nil {
		log.Debug("resize frame: bad JSON, dropping: %v", err)
		return []byte{ChanResize}
	}

	out, err := json.Marshal(resizeOut{Width: in.Data.Columns, Height: in.Data.Rows})
	if err != nil {
		return []byte{ChanResize}
	}
	return append([]byte{ChanResize}, out...)
}

// DecodeClusterToBrowser implements spec.md §4.4's decodeClusterToBrowser.
// filter may be nil, in which case no preamble stripping is applied
// (equivalent to running with debug mode off). The bool result reports
// whether a browser-bound text frame was produced.
func DecodeClusterToBrowser(binary []byte, filter *PreambleFilter) (string, bool) {
	if len(binary) == 0 {
		return "", false
	}

	channel := binary[0]
	payload := binary[1:]

	switch channel {
	case ChanStdout:
		out := payload
		if filter != nil {
			out = filter.Apply(payload)
		}
		if len(out) == 0 {
			return "", false
		}
		full := append([]byte{ChanStdout}, out...)
		return string(TagStdout) + base64.StdEncoding.EncodeToString(full), true

	case ChanStderr:
		log.Info("stderr (%d bytes), not forwarded to browser", len(payload))
		return "", false

	default:
		log.Debug("dropping frame on channel 0x%02x", channel)
		return "", false
	}
}

// preambleMarker is the bracketed-paste-mode disable sequence
// ("\r\n\x1b[?2004l\r") the debug filter discards up to and including, on
// the first stdout frame of a session.
var preambleMarker = []byte{13, 10, 27, 91, 63, 50, 48, 48, 52, 108, 13}

// bracketedPasteOn is the bracketed-paste-mode enable sequence
// ("\x1b[?2004h") the debug filter strips as a prefix from any frame.
var bracketedPasteOn = []byte{27, 91, 63, 50, 48, 48, 52, 104}

// PreambleFilter implements spec.md §4.4's terminal-preamble filter. It is
// per-session state: step tracks how many stdout frames have passed through
// so the marker search only applies to the very first one. Enabled only in
// debug/local mode, per spec.md.
type PreambleFilter struct {
	enabled bool
	step    int
}

// NewPreambleFilter returns a filter that strips bracketed-paste-mode
// markers when enabled is true, and is a no-op otherwise.
func NewPreambleFilter(enabled bool) *PreambleFilter {
	return &PreambleFilter{enabled: enabled}
}

// Apply runs the filter against one stdout payload and advances the
// frame-step counter.
func (f *PreambleFilter) Apply(payload []byte) []byte {
	defer func() { f.step++ }()

	if !f.enabled {
		return payload
	}

	out := payload
	if f.step == 0 {
		if idx := bytes.Index(out, preambleMarker); idx >= 0 {
			out = out[idx+len(preambleMarker):]
		}
	}
	if bytes.HasPrefix(out, bracketedPasteOn) {
		out = out[len(bracketedPasteOn):]
	}
	return out
}
