package cli

import "testing"

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    uint32
		wantErr bool
	}{
		{name: "Decimal", arg: "4198400", want: 0x401000},
		{name: "Hex lower prefix", arg: "0x401000", want: 0x401000},
		{name: "Hex upper prefix", arg: "0X401000", want: 0x401000},
		{name: "Hex lower digits", arg: "0xdeadbeef", want: 0xDEADBEEF},
		{name: "Zero", arg: "0", want: 0},
		{name: "Max 32-bit", arg: "0xFFFFFFFF", want: 0xFFFFFFFF},
		{name: "Surrounding spaces", arg: " 0x10 ", want: 0x10},
		{name: "Leading zero stays decimal", arg: "010", want: 10},
		{name: "Bare prefix", arg: "0x", wantErr: true},
		{name: "Negative", arg: "-1", wantErr: true},
		{name: "Too large", arg: "0x1FFFFFFFF", wantErr: true},
		{name: "Decimal too large", arg: "4294967296", wantErr: true},
		{name: "Hex without prefix", arg: "401000h", wantErr: true},
		{name: "Letters", arg: "abc", wantErr: true},
		{name: "Empty", arg: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAddress(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseAddress(%q) = 0x%X, want 0x%X", tt.arg, got, tt.want)
			}
		})
	}
}
