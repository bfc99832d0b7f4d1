// Package suggestions supplies the static catalog of well-known
// configuration locations per application and OS family. The catalog is
// data, not logic: discovery intersects it with what is actually on disk.
package suggestions

import (
	_ "embed"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

//go:embed suggestions.yaml
var catalogData []byte

type catalog struct {
	Suggestions []types.Suggestion `yaml:"suggestions"`
}

// Load parses the embedded catalog.
func Load() ([]types.Suggestion, error) {
	var c catalog
	if err := yaml.Unmarshal(catalogData, &c); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to parse suggestions catalog")
	}
	return c.Suggestions, nil
}

// CurrentOSFamily maps the runtime OS to a catalog key.
func CurrentOSFamily() string {
	switch runtime.GOOS {
	case "darwin":
		return "macos"
	default:
		return "linux"
	}
}
