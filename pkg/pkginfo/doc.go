// Package pkginfo reads a software repository from disk: per-version
// metadata records ("pkgsinfo") and deployment manifests.
//
// # Layout
//
// A repository root contains three directories:
//
//	pkgsinfo/   one metadata file per package version (.plist, .pkginfo, .yaml, .yml)
//	manifests/  deployment manifests naming the entry points
//	pkgs/       installer artifacts referenced by installer_item_location
//
// [LoadRepository] walks pkgsinfo/ and manifests/, decoding property lists
// with howett.net/plist and YAML files with gopkg.in/yaml.v3. A file that
// cannot be decoded, or a record that fails validation, becomes a
// [LoadError] rather than aborting the load.
//
// # Conversion
//
// [Repository.Records] converts the decoded metadata into [repo.Record]
// values for [repo.Build], resolving artifact sizes from pkgs/ when the
// artifact exists and from installer_item_size otherwise.
// [Repository.EntryPoints] collects every item named by a manifest,
// including nested conditional items.
//
// # Fingerprints
//
// [Scan] stats the metadata files without decoding them. [Fingerprint]
// reduces a scan to a stable hash, which callers use as a cache key for
// anything derived from the repository.
package pkginfo
