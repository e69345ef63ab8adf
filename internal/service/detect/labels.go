package detect

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"ornament-detect/internal/model"
)

// Labels maps class ids to ornament names. The id is the line index in the
// labels file.
type Labels []string

// LoadLabels reads one class name per line. Blank lines keep their index so
// ids stay aligned with the model's output channels.
func LoadLabels(path string) (Labels, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels file: %w", err)
	}
	defer file.Close()
	return ParseLabels(file)
}

// ParseLabels reads labels from r. A trailing empty line is ignored.
func ParseLabels(r io.Reader) (Labels, error) {
	var labels Labels
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		labels = append(labels, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	for len(labels) > 0 && labels[len(labels)-1] == "" {
		labels = labels[:len(labels)-1]
	}
	return labels, nil
}

// Name returns the label for id, or class_<id> when the id has no name.
func (l Labels) Name(id int) string {
	if id >= 0 && id < len(l) && l[id] != "" {
		return l[id]
	}
	return fmt.Sprintf("class_%d", id)
}

// Resolve fills in ClassName for every detection.
func (l Labels) Resolve(detections []model.RawDetection) {
	for i := range detections {
		detections[i].ClassName = l.Name(detections[i].ClassID)
	}
}
