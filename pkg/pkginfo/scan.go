package pkginfo

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/spruce/pkg/errors"
)

// Repository subdirectories.
const (
	PkgsinfoDir  = "pkgsinfo"
	ManifestsDir = "manifests"
	PkgsDir      = "pkgs"
)

var ignoredFiles = []string{".DS_Store"}

var metadataExts = []string{".plist", ".pkginfo", ".yaml", ".yml"}

// FileKind identifies which repository directory a file belongs to.
type FileKind string

const (
	KindPkginfo  FileKind = "pkginfo"
	KindManifest FileKind = "manifest"
	KindPkg      FileKind = "pkg"
)

// FileStamp identifies one repository file's state without its contents.
type FileStamp struct {
	Kind    FileKind  `json:"kind"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Scan lists the pkginfo, manifest and installer files under root, sorted
// by path. Hidden files and directories are skipped. Pkginfo files must
// carry one of the recognised extensions; every other visible file under
// manifests/ is a manifest. Installers under pkgs/ are stamped so that
// results derived from them go stale when they change.
func Scan(root string) ([]FileStamp, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRepoNotFound, err, "repository %s", root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "repository %s is not a directory", root)
	}

	var stamps []FileStamp
	for _, dir := range []struct {
		name string
		kind FileKind
	}{{PkgsinfoDir, KindPkginfo}, {ManifestsDir, KindManifest}, {PkgsDir, KindPkg}} {
		found, err := scanDir(filepath.Join(root, dir.name), dir.kind)
		if err != nil {
			return nil, err
		}
		stamps = append(stamps, found...)
	}
	slices.SortFunc(stamps, func(a, b FileStamp) int { return strings.Compare(a.Path, b.Path) })
	return stamps, nil
}

func scanDir(dir string, kind FileKind) ([]FileStamp, error) {
	var stamps []FileStamp
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && os.IsNotExist(err) {
				return fs.SkipDir
			}
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || slices.Contains(ignoredFiles, name) {
			return nil
		}
		if kind == KindPkginfo && !slices.Contains(metadataExts, strings.ToLower(filepath.Ext(name))) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		stamps = append(stamps, FileStamp{Kind: kind, Path: path, Size: info.Size(), ModTime: info.ModTime().UTC()})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "scan %s", dir)
	}
	return stamps, nil
}

// Fingerprint hashes a scan. Any added, removed, resized or touched file
// changes the result.
func Fingerprint(stamps []FileStamp) string {
	data, _ := json.Marshal(stamps)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
