// SPDX-License-Identifier: MPL-2.0

package podman

import (
	"encoding/json"
	"fmt"
	"strings"
)

type (
	// imageListEntry is one element of `image list --format json` output.
	// Go's case-insensitive field matching covers both podman's "Names" and
	// older engines' "names".
	imageListEntry struct {
		Names []string `json:"Names"`
	}

	// imageDetails is one element of `inspect --type image` output.
	imageDetails struct {
		RepoTags []string       `json:"RepoTags"`
		Config   map[string]any `json:"Config"`
	}

	// containerDetails is one element of `inspect --type container` output.
	containerDetails struct {
		ID    string         `json:"Id"`
		State containerState `json:"State"`
	}

	containerState struct {
		Status   string `json:"Status"`
		ExitCode int    `json:"ExitCode"`
	}
)

// decodeJSONOrJSONL decodes captured output lines into a slice of T. Podman
// emits a single JSON document (usually an array); nerdctl emits JSONL, one
// object per line. Both shapes are accepted.
func decodeJSONOrJSONL[T any](lines []string) ([]T, error) {
	if isJSONL(lines) {
		result := make([]T, 0, len(lines))
		for _, line := range lines {
			var elem T
			if err := json.Unmarshal([]byte(line), &elem); err != nil {
				return nil, fmt.Errorf("invalid JSONL line: %w", err)
			}
			result = append(result, elem)
		}
		return result, nil
	}

	joined := strings.TrimSpace(strings.Join(lines, ""))
	if joined == "" {
		return nil, nil
	}
	var result []T
	if err := json.Unmarshal([]byte(joined), &result); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return result, nil
}

// isJSONL reports whether every line looks like a standalone JSON object.
func isJSONL(lines []string) bool {
	if len(lines) == 0 {
		return false
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
			return false
		}
	}
	return true
}

// parseImageList decodes `image list` output.
func parseImageList(lines []string) ([]imageListEntry, error) {
	return decodeJSONOrJSONL[imageListEntry](lines)
}

// parseInspect decodes single-image `inspect` output.
func parseInspect(lines []string) (*imageDetails, error) {
	entries, err := decodeJSONOrJSONL[imageDetails](lines)
	if err != nil {
		return nil, err
	}
	if len(entries) != 1 {
		return nil, fmt.Errorf("expected exactly one inspect entry, got %d", len(entries))
	}
	return &entries[0], nil
}

// parseContainerInspect decodes single-container `inspect` output.
func parseContainerInspect(lines []string) (*containerDetails, error) {
	entries, err := decodeJSONOrJSONL[containerDetails](lines)
	if err != nil {
		return nil, err
	}
	if len(entries) != 1 {
		return nil, fmt.Errorf("expected exactly one inspect entry, got %d", len(entries))
	}
	return &entries[0], nil
}
