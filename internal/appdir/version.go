package appdir

import (
	"errors"
	"fmt"
	"os"

	"github.com/ohler55/ojg/oj"
	"github.com/tidwall/jsonc"
)

// ErrVersionNotFound is returned when no package.json candidate exists.
var ErrVersionNotFound = errors.New("application package.json not found")

type packageJSON struct {
	Version string `json:"version"`
}

// DetectVersion reads the application version from the first existing
// package.json candidate. It returns the version and the file it came from.
func DetectVersion(candidates []string) (string, string, error) {
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", path, fmt.Errorf("failed to read %s: %w", path, err)
		}

		var pkg packageJSON
		if err := oj.Unmarshal(jsonc.ToJSON(data), &pkg); err != nil {
			return "", path, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if pkg.Version == "" {
			return "", path, fmt.Errorf("%s has no version field", path)
		}
		return pkg.Version, path, nil
	}
	return "", "", ErrVersionNotFound
}
