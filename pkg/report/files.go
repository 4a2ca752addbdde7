package report

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/spruce/pkg/pkginfo"
)

var bundleExts = []string{".pkg", ".mpkg"}

// MissingInstallers lists metadata whose installer_item_location does not
// resolve under pkgs/. A location that resolves only by ignoring case is
// reported with the first mismatching path component.
func MissingInstallers(r *pkginfo.Repository) Report {
	pkgs := filepath.Join(r.Root, pkginfo.PkgsDir)
	var items []Item
	for _, p := range r.PkginfoPaths() {
		rec := r.Pkgsinfo[p]
		loc := rec.InstallerItemLocation
		if loc == "" {
			continue
		}
		item := Item{Name: rec.Name, Version: rec.Version, Path: p, Artifact: r.ArtifactPath(loc)}
		if _, err := os.Stat(item.Artifact); err != nil {
			item.Detail = "missing"
			items = append(items, item)
			continue
		}
		if bad := badComponent(pkgs, loc); bad != "" {
			item.Detail = "case mismatch at '" + bad + "'"
			items = append(items, item)
		}
	}
	return newReport(NameMissingInstallers, items)
}

// badComponent walks loc under dir comparing names exactly and returns the
// first component that is not present as spelled.
func badComponent(dir, loc string) string {
	for _, part := range strings.Split(path.Clean(loc), "/") {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return part
		}
		if !slices.ContainsFunc(entries, func(e fs.DirEntry) bool { return e.Name() == part }) {
			return part
		}
		dir = filepath.Join(dir, part)
	}
	return ""
}

// OrphanedInstallers lists files under pkgs/ that no metadata references.
// Bundle packages (.pkg and .mpkg directories) are treated as single
// artifacts.
func OrphanedInstallers(r *pkginfo.Repository) Report {
	referenced := make(map[string]bool)
	for _, rec := range r.Pkgsinfo {
		if rec.InstallerItemLocation != "" {
			referenced[path.Clean(rec.InstallerItemLocation)] = true
		}
	}

	pkgs := filepath.Join(r.Root, pkginfo.PkgsDir)
	var items []Item
	_ = filepath.WalkDir(pkgs, func(p string, d fs.DirEntry, err error) error {
		if err != nil || p == pkgs {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rel, _ := filepath.Rel(pkgs, p)
		rel = filepath.ToSlash(rel)
		isBundle := d.IsDir() && slices.Contains(bundleExts, strings.ToLower(filepath.Ext(p)))
		if d.IsDir() && !isBundle {
			return nil
		}
		if !referenced[rel] {
			item := Item{Path: p}
			if info, err := d.Info(); err == nil && !d.IsDir() {
				item.Size = info.Size()
			}
			items = append(items, item)
		}
		if isBundle {
			return fs.SkipDir
		}
		return nil
	})
	return newReport(NameOrphanedInstallers, items)
}

// LoadErrors lists the files that could not be decoded or validated.
func LoadErrors(r *pkginfo.Repository) Report {
	items := make([]Item, 0, len(r.Errors))
	for _, e := range r.Errors {
		items = append(items, Item{Path: e.Path, Detail: e.Err})
	}
	return newReport(NameLoadErrors, items)
}
