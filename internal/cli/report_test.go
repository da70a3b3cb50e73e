package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ZacharyZcR/vapid/internal/disasm"
	"github.com/ZacharyZcR/vapid/internal/pe"
)

func TestFormatResult(t *testing.T) {
	tests := []struct {
		name string
		res  pe.Result
		want string
	}{
		{
			name: "Mapped",
			res:  pe.Result{VirtualAddress: 0x401500, FileOffset: 0x900, Mapped: true},
			want: "0x401500 -> 0x900",
		},
		{
			name: "Unmapped",
			res:  pe.Result{VirtualAddress: 0x400000, Section: -1},
			want: "0x400000 -> ??",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatResult(tt.res); got != tt.want {
				t.Errorf("FormatResult() = %q, want %q", got, tt.want)
			}

			var buf bytes.Buffer
			NewReporter(&buf).PrintResult(tt.res)
			if got := buf.String(); got != tt.want+"\n" {
				t.Errorf("PrintResult() wrote %q, want %q", got, tt.want+"\n")
			}
		})
	}
}

func TestPrintInfo(t *testing.T) {
	info := &pe.Info{
		FilePath:     "sample.exe",
		FileSize:     2048,
		Architecture: "x86 (32位)",
		EntryPoint:   0x1000,
		ImageBase:    0x400000,
		Checksum:     &pe.ChecksumInfo{Stored: 0x1234, Computed: 0x5678},
		Sections: []pe.SectionInfo{
			{Name: ".text", VirtualAddress: 0x1000, Permissions: "R-X", Entropy: 6.5},
			{Name: ".evil", VirtualAddress: 0x2000, Permissions: "RWX", Entropy: 7.9},
		},
	}

	t.Run("All sections", func(t *testing.T) {
		var buf bytes.Buffer
		NewReporter(&buf).PrintInfo(info)
		out := buf.String()

		for _, want := range []string{"sample.exe", "2.0 KiB", "0x400000", ".text", ".evil", "6.50", "无效"} {
			if !strings.Contains(out, want) {
				t.Errorf("report missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("Suspicious only", func(t *testing.T) {
		var buf bytes.Buffer
		r := NewReporter(&buf)
		r.SetSuspiciousOnly(true)
		r.PrintInfo(info)
		out := buf.String()

		if strings.Contains(out, ".text") {
			t.Errorf("suspicious report lists .text:\n%s", out)
		}
		if !strings.Contains(out, ".evil") || !strings.Contains(out, "共 1 个") {
			t.Errorf("suspicious report missing .evil:\n%s", out)
		}
	})
}

func TestPrintDisassembly(t *testing.T) {
	var buf bytes.Buffer
	NewReporter(&buf).PrintDisassembly([]disasm.Instruction{
		{Address: 0x401000, FileOffset: 0x400, Bytes: []byte{0x55}, Text: "push ebp"},
	})

	out := buf.String()
	if !strings.Contains(out, "0x00401000  00000400  55") || !strings.Contains(out, "push ebp") {
		t.Errorf("unexpected disassembly output:\n%s", out)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{bytes: 512, want: "512 B"},
		{bytes: 1536, want: "1.5 KiB"},
		{bytes: 3 * 1024 * 1024, want: "3.0 MiB"},
	}

	for _, tt := range tests {
		if got := formatSize(tt.bytes); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
