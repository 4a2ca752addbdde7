package pkginfo

import (
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/spruce/pkg/errors"
	"github.com/matzehuels/spruce/pkg/repo"
)

// NoCategory is reported for records without a category.
const NoCategory = "*NO CATEGORY*"

// TestingChannels are the channel names treated as pre-production.
var TestingChannels = []string{"development", "testing", "phase1", "phase2", "phase3"}

// Record is one package version's metadata file. Keys not listed here are
// ignored.
type Record struct {
	Name                  string     `plist:"name" yaml:"name" json:"name" validate:"required"`
	Version               string     `plist:"version" yaml:"version" json:"version" validate:"required"`
	DisplayName           string     `plist:"display_name,omitempty" yaml:"display_name,omitempty" json:"display_name,omitempty"`
	Requires              []string   `plist:"requires,omitempty" yaml:"requires,omitempty" json:"requires,omitempty" validate:"dive,required"`
	UpdateFor             []string   `plist:"update_for,omitempty" yaml:"update_for,omitempty" json:"update_for,omitempty" validate:"dive,required"`
	Catalogs              []string   `plist:"catalogs,omitempty" yaml:"catalogs,omitempty" json:"catalogs,omitempty"`
	MinimumOSVersion      string     `plist:"minimum_os_version,omitempty" yaml:"minimum_os_version,omitempty" json:"minimum_os_version,omitempty"`
	MaximumOSVersion      string     `plist:"maximum_os_version,omitempty" yaml:"maximum_os_version,omitempty" json:"maximum_os_version,omitempty"`
	InstallerItemLocation string     `plist:"installer_item_location,omitempty" yaml:"installer_item_location,omitempty" json:"installer_item_location,omitempty"`
	InstallerItemSize     int64      `plist:"installer_item_size,omitempty" yaml:"installer_item_size,omitempty" json:"installer_item_size,omitempty" validate:"gte=0"`
	InstallerType         string     `plist:"installer_type,omitempty" yaml:"installer_type,omitempty" json:"installer_type,omitempty"`
	Category              string     `plist:"category,omitempty" yaml:"category,omitempty" json:"category,omitempty"`
	UnattendedInstall     bool       `plist:"unattended_install,omitempty" yaml:"unattended_install,omitempty" json:"unattended_install,omitempty"`
	ForceInstallAfterDate *time.Time `plist:"force_install_after_date,omitempty" yaml:"force_install_after_date,omitempty" json:"force_install_after_date,omitempty"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the required fields. The returned error carries
// [errors.ErrCodeInvalidRecord].
func (r *Record) Validate() error {
	if err := recordValidator().Struct(r); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRecord, err, "invalid record %q", r.Name)
	}
	return nil
}

// InTesting reports whether any of the record's catalogs is a testing
// channel. Comparison is case-insensitive.
func (r *Record) InTesting() bool {
	for _, c := range r.Catalogs {
		for _, t := range TestingChannels {
			if strings.EqualFold(c, t) {
				return true
			}
		}
	}
	return false
}

// InProduction reports whether the record is not in any testing channel.
func (r *Record) InProduction() bool { return !r.InTesting() }

// CategoryName returns the category, or [NoCategory].
func (r *Record) CategoryName() string {
	if r.Category == "" {
		return NoCategory
	}
	return r.Category
}

// SizeBytes converts installer_item_size, stored in kilobytes, to bytes.
func (r *Record) SizeBytes() int64 { return r.InstallerItemSize * 1024 }

// ToRepo converts the record into graph input. size is the resolved
// artifact size in bytes.
func (r *Record) ToRepo(path string, size int64) repo.Record {
	return repo.Record{
		MetadataPath: path,
		Name:         r.Name,
		Version:      r.Version,
		Requires:     r.Requires,
		UpdateFor:    r.UpdateFor,
		Channels:     r.Catalogs,
		MinOSVersion: r.MinimumOSVersion,
		MaxOSVersion: r.MaximumOSVersion,
		ArtifactPath: r.InstallerItemLocation,
		ArtifactSize: size,
	}
}
