package utils

import "testing"

func TestMemorySizeString(t *testing.T) {
	gb := float64(GB)
	tests := []struct {
		size MemorySize
		want string
	}{
		{0, "0B"},
		{512, "512B"},
		{KB, "1.0K"},
		{16 * MB, "16.0M"},
		{64 * MB, "64.0M"},
		{MemorySize(1.2 * gb), "1.2G"},
		{2 * TB, "2.0T"},
	}

	for _, tt := range tests {
		if got := tt.size.String(); got != tt.want {
			t.Errorf("MemorySize(%d).String() = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestMemorySizeShort(t *testing.T) {
	tests := []struct {
		size MemorySize
		want string
	}{
		{64 * MB, "64M"},
		{2 * GB, "2G"},
		{8 * KB, "8K"},
		{100, "100B"},
	}

	for _, tt := range tests {
		if got := tt.size.Short(); got != tt.want {
			t.Errorf("MemorySize(%d).Short() = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestParseMemorySize(t *testing.T) {
	tests := []struct {
		in      string
		want    MemorySize
		wantErr bool
	}{
		{"16M", 16 * MB, false},
		{"8G", 8 * GB, false},
		{"1024K", MB, false},
		{"1048576", MB, false},
		{"512B", 512, false},
		{"1.5G", MemorySize(1.5 * float64(GB)), false},
		{" 4g ", 4 * GB, false},
		{"", 0, true},
		{"abc", 0, true},
		{"12Q", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseMemorySize(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMemorySize(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMemorySize(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMemorySize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
