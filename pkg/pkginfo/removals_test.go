package pkginfo

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/spruce/pkg/errors"
)

func TestLoadRemovals(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
		want    []string
	}{
		{
			name: "plist",
			file: "removals.plist",
			content: `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>removals</key>
	<array>
		<dict><key>path</key><string>/repo/pkgsinfo/Foo-1.0.plist</string></dict>
		<dict><key>note</key><string>no path</string></dict>
		<dict><key>path</key><string>/repo/pkgs/Foo-1.0.dmg</string></dict>
	</array>
</dict>
</plist>`,
			want: []string{"/repo/pkgsinfo/Foo-1.0.plist", "/repo/pkgs/Foo-1.0.dmg"},
		},
		{
			name:    "yaml",
			file:    "removals.yaml",
			content: "removals:\n  - path: pkgsinfo/Foo-1.0.yaml\n  - path: ''\n",
			want:    []string{"pkgsinfo/Foo-1.0.yaml"},
		},
		{
			name:    "no removals key",
			file:    "empty.yaml",
			content: "other: 1\n",
			want:    []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			writeFile(t, path, tt.content)
			got, err := LoadRemovals(path)
			if err != nil {
				t.Fatalf("LoadRemovals() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("LoadRemovals() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadRemovalsErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.plist")
	writeFile(t, bad, "<plist><dict><key>removals</key>")

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing", filepath.Join(dir, "nope.plist"), errors.ErrCodeInvalidPath},
		{"malformed", bad, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadRemovals(tt.path); !errors.Is(err, tt.code) {
				t.Errorf("LoadRemovals() error = %v, want %s", err, tt.code)
			}
		})
	}
}
