// Package volume enumerates mounted volumes and their available space.
package volume

import (
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
)

// Compile-time interface check.
var _ Catalog = (*GopsutilCatalog)(nil)

// Catalog lists the volumes a benchmark may target.
type Catalog interface {
	// ListVolumes returns a snapshot of mounted volumes. Enumeration is
	// best-effort: it never fails, returning an empty slice when the mount
	// table cannot be read, and silently dropping entries whose free space
	// cannot be determined.
	ListVolumes() []Descriptor
}

// reservedMountPrefixes are mount path prefixes treated as system mounts and
// excluded from enumeration.
var reservedMountPrefixes = []string{
	"/proc",
	"/sys",
	"/dev",
	"/run",
	"/boot",
	"/snap",
	"/var",
}

// GopsutilCatalog implements Catalog using the gopsutil disk APIs.
type GopsutilCatalog struct {
	partitions func(all bool) ([]disk.PartitionStat, error)
	usage      func(path string) (*disk.UsageStat, error)
}

// NewGopsutilCatalog returns a Catalog backed by the local mount table.
func NewGopsutilCatalog() *GopsutilCatalog {
	return &GopsutilCatalog{
		partitions: disk.Partitions,
		usage:      disk.Usage,
	}
}

// ListVolumes enumerates physical mounts, filters hidden and system entries,
// and resolves available bytes for each survivor.
func (c *GopsutilCatalog) ListVolumes() []Descriptor {
	parts, err := c.partitions(false)
	if err != nil {
		return []Descriptor{}
	}

	vols := make([]Descriptor, 0, len(parts))
	for _, p := range parts {
		if isSystemMount(p.Mountpoint) || isHiddenMount(p.Mountpoint) {
			continue
		}
		usage, err := c.usage(p.Mountpoint)
		if err != nil {
			continue
		}
		vols = append(vols, Descriptor{
			Name:           displayName(p.Mountpoint),
			MountPath:      p.Mountpoint,
			AvailableBytes: usage.Free,
		})
	}
	return vols
}

// isSystemMount reports whether mount sits under a reserved system prefix.
// The root mount itself is kept.
func isSystemMount(mount string) bool {
	for _, prefix := range reservedMountPrefixes {
		if mount == prefix || strings.HasPrefix(mount, prefix+"/") {
			return true
		}
	}
	return false
}

// isHiddenMount reports whether the final path segment starts with a dot.
func isHiddenMount(mount string) bool {
	return strings.HasPrefix(filepath.Base(mount), ".")
}

// displayName derives a user-facing volume name from its mount path. The root
// mount has no meaningful base name and is shown as its path.
func displayName(mount string) string {
	base := filepath.Base(mount)
	if base == "/" || base == "." {
		return mount
	}
	return base
}
