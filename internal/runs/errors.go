package runs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInput marks a fatal pre-processing failure: a missing or unreadable
// recording, or a segmentation file that cannot be parsed. Input errors
// abort the run before any artifact is produced.
var ErrInput = errors.New("input error")

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for classification. The marker should be one of
// the exported sentinel errors of this module's packages.
func Wrap(marker error, stage, operation string, err error) error {
	detail := buildDetail(stage, operation)
	if marker == nil {
		return fmt.Errorf("%s: %w", detail, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation string) string {
	parts := make([]string, 0, 2)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
