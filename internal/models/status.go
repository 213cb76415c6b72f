package models

import "strings"

// Level is how a status line is rendered.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// StatusLine is a log line tagged for display.
type StatusLine struct {
	Text  string `json:"text"`
	Level Level  `json:"level"`
}

// Classify tags a line by keyword: anything mentioning Deleted or Disabled is a success.
func Classify(line string) Level {
	if strings.Contains(line, "Deleted") || strings.Contains(line, "Disabled") {
		return LevelSuccess
	}
	return LevelError
}

// ClassifyAll tags every line in order.
func ClassifyAll(lines []string) []StatusLine {
	out := make([]StatusLine, len(lines))
	for i, l := range lines {
		out[i] = StatusLine{Text: l, Level: Classify(l)}
	}
	return out
}
