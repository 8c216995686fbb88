package bench

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func Test_Token(t *testing.T) {
	var tok Token

	if tok.IsCancelled() {
		t.Error("fresh token reports cancelled")
	}

	tok.Cancel()
	if !tok.IsCancelled() {
		t.Error("token not cancelled after Cancel")
	}

	// Idempotent.
	tok.Cancel()
	if !tok.IsCancelled() {
		t.Error("second Cancel cleared the flag")
	}

	tok.Reset()
	if tok.IsCancelled() {
		t.Error("token still cancelled after Reset")
	}
}

func Test_WriteFile_Cases(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int64
		sizeBytes int64
		cancel    bool
		wantErr   error
		wantFile  int64 // expected on-disk size, -1 to skip the check
	}{
		{
			name:      "exact multiple of chunk size",
			chunkSize: 1024,
			sizeBytes: 4096,
			wantFile:  4096,
		},
		{
			name:      "remainder smaller than one chunk",
			chunkSize: 1024,
			sizeBytes: 2500,
			wantFile:  2500,
		},
		{
			name:      "size smaller than one chunk",
			chunkSize: 1024 * 1024,
			sizeBytes: 10,
			wantFile:  10,
		},
		{
			name:      "cancelled before first chunk",
			chunkSize: 1024,
			sizeBytes: 4096,
			cancel:    true,
			wantErr:   ErrCancelled,
			wantFile:  -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewChunkedRunner(tt.chunkSize)
			path := filepath.Join(t.TempDir(), "write.dat")

			var tok Token
			if tt.cancel {
				tok.Cancel()
			}

			mbps, err := r.WriteFile(path, tt.sizeBytes, &tok)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mbps <= 0 {
				t.Errorf("throughput = %f, want > 0", mbps)
			}
			if tt.wantFile >= 0 {
				info, statErr := os.Stat(path)
				if statErr != nil {
					t.Fatalf("stat written file: %v", statErr)
				}
				if info.Size() != tt.wantFile {
					t.Errorf("file size = %d, want %d", info.Size(), tt.wantFile)
				}
			}
		})
	}
}

func Test_WriteFile_Errors(t *testing.T) {
	r := NewChunkedRunner(1024)
	var tok Token

	t.Run("unopenable path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "no-such-dir", "write.dat")
		if _, err := r.WriteFile(path, 1024, &tok); err == nil {
			t.Fatal("expected error for unopenable path")
		}
	})

	t.Run("non-positive size", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "write.dat")
		if _, err := r.WriteFile(path, 0, &tok); err == nil {
			t.Fatal("expected error for zero size")
		}
	})
}

func Test_ReadFile_Cases(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int64
		fileBytes int64 // bytes actually written before the read pass
		sizeBytes int64 // nominal pass size
		cancel    bool
		wantErr   error
	}{
		{
			name:      "full file read back",
			chunkSize: 1024,
			fileBytes: 4096,
			sizeBytes: 4096,
		},
		{
			name:      "early EOF tolerated when file is shorter",
			chunkSize: 1024,
			fileBytes: 1500,
			sizeBytes: 8192,
		},
		{
			name:      "nominal size smaller than file",
			chunkSize: 1024,
			fileBytes: 4096,
			sizeBytes: 2048,
		},
		{
			name:      "cancelled before first chunk",
			chunkSize: 1024,
			fileBytes: 4096,
			sizeBytes: 4096,
			cancel:    true,
			wantErr:   ErrCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewChunkedRunner(tt.chunkSize)
			path := filepath.Join(t.TempDir(), "read.dat")

			var tok Token
			if _, err := r.WriteFile(path, tt.fileBytes, &tok); err != nil {
				t.Fatalf("setup write failed: %v", err)
			}

			if tt.cancel {
				tok.Cancel()
			}

			mbps, err := r.ReadFile(path, tt.sizeBytes, &tok)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mbps <= 0 {
				t.Errorf("throughput = %f, want > 0", mbps)
			}
		})
	}
}

func Test_ReadFile_MissingFile(t *testing.T) {
	r := NewChunkedRunner(1024)
	var tok Token

	path := filepath.Join(t.TempDir(), "never-written.dat")
	if _, err := r.ReadFile(path, 1024, &tok); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func Test_NewChunkedRunner_DefaultChunk(t *testing.T) {
	r := NewChunkedRunner(0)
	if r.chunkSize != DefaultChunkSize {
		t.Errorf("chunkSize = %d, want %d", r.chunkSize, DefaultChunkSize)
	}
	if int64(len(r.payload)) != DefaultChunkSize {
		t.Errorf("payload length = %d, want %d", len(r.payload), DefaultChunkSize)
	}
}
