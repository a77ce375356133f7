package transcript

import (
	"fmt"
	"regexp"
	"strconv"
)

// Annotation is a user-supplied note pinned to a point in the recording.
type Annotation struct {
	Timestamp string `yaml:"timestamp" json:"timestamp"` // "MM:SS"
	Text      string `yaml:"text" json:"text"`
}

// Transcript is the text of one incident's radio traffic. The text carries
// [MM:SS]-style markers giving the offset of each transmission from the start
// of the recording. Supplemental holds material the dispatcher or reviewer
// attached (CAD notes, run cards); Annotations are reviewer notes.
type Transcript struct {
	Text         string
	Supplemental string
	Annotations  []Annotation
}

// Marker is one parsed [MM:SS] timestamp marker.
type Marker struct {
	Raw     string // e.g. "[04:32]"
	Seconds int    // offset from start of recording
}

var markerRe = regexp.MustCompile(`\[(\d{1,3}):(\d{2})\]`)

// Markers returns every timestamp marker in the transcript text, in order of
// appearance.
func (t *Transcript) Markers() []Marker {
	matches := markerRe.FindAllStringSubmatch(t.Text, -1)
	markers := make([]Marker, 0, len(matches))
	for _, m := range matches {
		min, _ := strconv.Atoi(m[1])
		sec, _ := strconv.Atoi(m[2])
		markers = append(markers, Marker{Raw: m[0], Seconds: min*60 + sec})
	}
	return markers
}

// Duration returns the offset of the last marker in seconds, or 0 when the
// transcript carries no markers.
func (t *Transcript) Duration() int {
	markers := t.Markers()
	if len(markers) == 0 {
		return 0
	}
	return markers[len(markers)-1].Seconds
}

// ParseTimestamp converts an "MM:SS" string (with or without surrounding
// brackets) to seconds since the start of the recording.
func ParseTimestamp(s string) (int, error) {
	m := markerRe.FindStringSubmatch("[" + trimBrackets(s) + "]")
	if m == nil {
		return 0, fmt.Errorf("transcript: invalid timestamp %q (want MM:SS)", s)
	}
	min, _ := strconv.Atoi(m[1])
	sec, _ := strconv.Atoi(m[2])
	return min*60 + sec, nil
}

func trimBrackets(s string) string {
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		return s[1 : len(s)-1]
	}
	return s
}
