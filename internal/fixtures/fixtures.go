// Package fixtures holds recorded landmark sessions shared by tests.
package fixtures

import (
	"embed"
	"fmt"
)

//go:embed recordings/*.json
var recordingsFS embed.FS

// LoadRecording returns the raw JSON of a recorded session by file name.
func LoadRecording(name string) ([]byte, error) {
	data, err := recordingsFS.ReadFile("recordings/" + name)
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", name, err)
	}
	return data, nil
}

// Recordings lists the embedded recording names.
func Recordings() ([]string, error) {
	entries, err := recordingsFS.ReadDir("recordings")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
