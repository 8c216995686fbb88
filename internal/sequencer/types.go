package sequencer

import "fmt"

// SizeSpec is one entry of the ordered benchmark size table. Ordering is
// significant: later phases assume earlier, smaller phases succeeded.
type SizeSpec struct {
	Label     string `json:"label"`
	SizeBytes int64  `json:"size_bytes"`
}

// DefaultSizes returns the standard three-size table. Each call returns a
// distinct slice.
func DefaultSizes() []SizeSpec {
	return []SizeSpec{
		{Label: "100MB", SizeBytes: 100 * 1024 * 1024},
		{Label: "1GB", SizeBytes: 1024 * 1024 * 1024},
		{Label: "10GB", SizeBytes: 10 * 1024 * 1024 * 1024},
	}
}

// DefaultSafetyBuffer is added to the largest configured size when validating
// available space before a run.
const DefaultSafetyBuffer = 1024 * 1024 * 1024

// PassResult holds the measured throughput pair for one configured size.
// Immutable after creation.
type PassResult struct {
	SizeLabel      string  `json:"size_label"`
	SizeBytes      int64   `json:"size_bytes"`
	WriteSpeedMBps float64 `json:"write_speed_mbps"`
	ReadSpeedMBps  float64 `json:"read_speed_mbps"`
}

// AggregateResult is the ordered sequence of per-size results, one per
// configured size. It exists only for runs where every phase completed.
type AggregateResult []PassResult

// RunState is the snapshot published to the presentation layer. IsActive
// false guarantees no background work is touching shared state. Result is nil
// until a run completes successfully.
type RunState struct {
	IsActive      bool            `json:"is_active"`
	StatusMessage string          `json:"status_message"`
	Result        AggregateResult `json:"result,omitempty"`
}

// InsufficientSpaceError reports a failed free-space precondition.
type InsufficientSpaceError struct {
	RequiredBytes  uint64
	AvailableBytes uint64
}

func (e *InsufficientSpaceError) Error() string {
	return fmt.Sprintf("insufficient space: required %s, available %s",
		formatBytes(e.RequiredBytes), formatBytes(e.AvailableBytes))
}

// formatBytes renders a byte count in the largest fitting binary unit.
func formatBytes(size uint64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case size >= gb:
		return fmt.Sprintf("%.2fGB", float64(size)/float64(gb))
	case size >= mb:
		return fmt.Sprintf("%.2fMB", float64(size)/float64(mb))
	case size >= kb:
		return fmt.Sprintf("%.2fKB", float64(size)/float64(kb))
	default:
		return fmt.Sprintf("%dB", size)
	}
}
