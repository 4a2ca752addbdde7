package pkginfo

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

const firefoxPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>name</key>
	<string>Firefox</string>
	<key>version</key>
	<string>52.0</string>
	<key>catalogs</key>
	<array>
		<string>production</string>
	</array>
	<key>requires</key>
	<array>
		<string>Flash</string>
	</array>
	<key>installer_item_location</key>
	<string>apps/Firefox-52.0.dmg</string>
	<key>installer_item_size</key>
	<integer>100</integer>
	<key>minimum_os_version</key>
	<string>10.9</string>
	<key>unattended_install</key>
	<true/>
	<key>force_install_after_date</key>
	<date>2017-03-01T18:00:00Z</date>
	<key>blocking_applications</key>
	<array>
		<string>Firefox.app</string>
	</array>
</dict>
</plist>
`

const flashYAML = `name: Flash
version: "25.0.0.127"
catalogs: [testing]
category: Plugins
installer_item_location: plugins/Flash.pkg
installer_item_size: 20
`

const siteManifest = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>catalogs</key>
	<array><string>production</string></array>
	<key>managed_installs</key>
	<array><string>Firefox</string></array>
	<key>conditional_items</key>
	<array>
		<dict>
			<key>condition</key>
			<string>machine_type == "laptop"</string>
			<key>optional_installs</key>
			<array><string>Flash-25.0.0.127</string></array>
		</dict>
	</array>
</dict>
</plist>
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func fixtureRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pkgsinfo", "apps", "Firefox-52.0.plist"), firefoxPlist)
	writeFile(t, filepath.Join(root, "pkgsinfo", "plugins", "Flash.yaml"), flashYAML)
	writeFile(t, filepath.Join(root, "pkgsinfo", "broken.plist"), "<plist><dict><key>name")
	writeFile(t, filepath.Join(root, "pkgsinfo", "noversion.pkginfo"), strings.Replace(firefoxPlist, "<key>version</key>", "<key>ignored</key>", 1))
	writeFile(t, filepath.Join(root, "pkgsinfo", "README.txt"), "not metadata")
	writeFile(t, filepath.Join(root, "pkgsinfo", ".DS_Store"), "junk")
	writeFile(t, filepath.Join(root, "pkgsinfo", ".git", "config.plist"), "hidden")
	writeFile(t, filepath.Join(root, "manifests", "site_default"), siteManifest)
	writeFile(t, filepath.Join(root, "manifests", ".hidden"), "junk")
	writeFile(t, filepath.Join(root, "pkgs", "plugins", "Flash.pkg"), strings.Repeat("x", 512))
	return root
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func TestScan(t *testing.T) {
	root := fixtureRepo(t)
	stamps, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	var got []string
	for _, s := range stamps {
		rel, _ := filepath.Rel(root, s.Path)
		got = append(got, string(s.Kind)+":"+filepath.ToSlash(rel))
	}
	want := []string{
		"manifest:manifests/site_default",
		"pkg:pkgs/plugins/Flash.pkg",
		"pkginfo:pkgsinfo/apps/Firefox-52.0.plist",
		"pkginfo:pkgsinfo/broken.plist",
		"pkginfo:pkgsinfo/noversion.pkginfo",
		"pkginfo:pkgsinfo/plugins/Flash.yaml",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Scan() = %v, want %v", got, want)
	}
}

func TestScanMissingRoot(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Scan() on missing root returned nil error")
	}
}

func TestScanMissingSubdirs(t *testing.T) {
	stamps, err := Scan(t.TempDir())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(stamps) != 0 {
		t.Errorf("Scan() = %v, want empty", stamps)
	}
}

func TestFingerprintChanges(t *testing.T) {
	root := fixtureRepo(t)
	before, _ := Scan(root)
	again, _ := Scan(root)
	if Fingerprint(before) != Fingerprint(again) {
		t.Fatal("Fingerprint differs for identical scans")
	}

	path := filepath.Join(root, "pkgsinfo", "plugins", "Flash.yaml")
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	after, _ := Scan(root)
	if Fingerprint(before) == Fingerprint(after) {
		t.Error("Fingerprint unchanged after touching a file")
	}

	writeFile(t, filepath.Join(root, "pkgs", "apps", "Firefox-52.0.dmg"), "dmg")
	added, _ := Scan(root)
	if Fingerprint(after) == Fingerprint(added) {
		t.Error("Fingerprint unchanged after adding an installer")
	}
}

func TestLoadRepository(t *testing.T) {
	root := fixtureRepo(t)
	r, err := LoadRepository(context.Background(), root, LoadOptions{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("LoadRepository() error = %v", err)
	}

	if len(r.Pkgsinfo) != 2 {
		t.Fatalf("Pkgsinfo = %d records, want 2", len(r.Pkgsinfo))
	}
	if len(r.Manifests) != 1 {
		t.Fatalf("Manifests = %d, want 1", len(r.Manifests))
	}

	var errPaths []string
	for _, e := range r.Errors {
		errPaths = append(errPaths, filepath.Base(e.Path))
	}
	if want := []string{"broken.plist", "noversion.pkginfo"}; !slices.Equal(errPaths, want) {
		t.Errorf("Errors = %v, want %v", errPaths, want)
	}

	ff, ok := r.Record(filepath.Join(root, "pkgsinfo", "apps", "Firefox-52.0.plist"))
	if !ok {
		t.Fatal("Firefox record missing")
	}
	if !ff.UnattendedInstall || ff.ForceInstallAfterDate == nil || ff.InstallerItemSize != 100 {
		t.Errorf("Firefox = %+v", ff)
	}
	if ff.ForceInstallAfterDate != nil && ff.ForceInstallAfterDate.Year() != 2017 {
		t.Errorf("ForceInstallAfterDate = %v", ff.ForceInstallAfterDate)
	}

	if got, want := r.EntryPoints(), []string{"Firefox", "Flash-25.0.0.127"}; !slices.Equal(got, want) {
		t.Errorf("EntryPoints() = %v, want %v", got, want)
	}

	records := r.Records()
	sizes := map[string]int64{}
	for _, rec := range records {
		sizes[rec.Name] = rec.ArtifactSize
	}
	// Firefox's artifact is absent, so its declared size applies; Flash's
	// artifact exists on disk.
	if sizes["Firefox"] != 100*1024 {
		t.Errorf("Firefox size = %d, want %d", sizes["Firefox"], 100*1024)
	}
	if sizes["Flash"] != 512 {
		t.Errorf("Flash size = %d, want 512", sizes["Flash"])
	}
	if r.Fingerprint == "" {
		t.Error("Fingerprint is empty")
	}
}

func TestLoadRepositoryCanceled(t *testing.T) {
	root := fixtureRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LoadRepository(ctx, root, LoadOptions{Logger: quietLogger()}); err == nil {
		t.Error("LoadRepository() with canceled context returned nil error")
	}
}
