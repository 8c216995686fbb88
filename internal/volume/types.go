package volume

// Descriptor is an immutable snapshot of a mounted volume taken at
// enumeration time. It goes stale as soon as filesystem state changes; there
// is no live binding to the mount.
type Descriptor struct {
	Name           string `json:"name"`
	MountPath      string `json:"mount_path"`
	AvailableBytes uint64 `json:"available_bytes"`
}
