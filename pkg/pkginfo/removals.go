package pkginfo

import (
	"os"

	"github.com/matzehuels/spruce/pkg/errors"
)

type removalsFile struct {
	Removals []struct {
		Path string `plist:"path" yaml:"path"`
	} `plist:"removals" yaml:"removals"`
}

// LoadRemovals reads a removal list: a plist or YAML dictionary whose
// "removals" array holds dictionaries with a "path" key. Entries without
// a path are skipped.
func LoadRemovals(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "removal list %s", path)
	}
	var f removalsFile
	if err := decodeFile(path, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "removal list %s", path)
	}
	paths := []string{}
	for _, r := range f.Removals {
		if r.Path != "" {
			paths = append(paths, r.Path)
		}
	}
	return paths, nil
}
