package platformversion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleCPUInfo = `processor	: 0
vendor_id	: GenuineIntel
cpu family	: 6
model		: 158
model name	: Intel(R) Core(TM) i7-8700 CPU @ 3.20GHz
stepping	: 10

processor	: 1
model name	: Intel(R) Core(TM) i7-8700 CPU @ 3.20GHz
`

func TestParseCPUModel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"x86", sampleCPUInfo, "Intel(R) Core(TM) i7-8700 CPU @ 3.20GHz"},
		{"no model", "processor\t: 0\nBogoMIPS\t: 48.00\n", ""},
		{"empty", "", ""},
		{"no colon", "model name\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCPUModel(strings.NewReader(tt.in)))
		})
	}
}

func TestParseOSRelease(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantName    string
		wantVersion string
	}{
		{
			name:        "debian",
			in:          "PRETTY_NAME=\"Debian GNU/Linux 12 (bookworm)\"\nNAME=\"Debian GNU/Linux\"\nVERSION_ID=\"12\"\nVERSION=\"12 (bookworm)\"\nID=debian\n",
			wantName:    "Debian GNU/Linux",
			wantVersion: "12 (bookworm)",
		},
		{
			name:        "unquoted",
			in:          "NAME=Arch\nVERSION=rolling\n",
			wantName:    "Arch",
			wantVersion: "rolling",
		},
		{
			name:        "last wins",
			in:          "NAME=\"first\"\nNAME=\"second\"\n",
			wantName:    "second",
			wantVersion: "",
		},
		{
			name: "missing keys",
			in:   "ID=alpine\nVERSION_ID=3.19\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, version := parseOSRelease(strings.NewReader(tt.in))
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantVersion, version)
		})
	}
}

func TestParseCPUList(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"0", 1},
		{"0-3", 4},
		{"0-3,5", 5},
		{"0-1,4-7\n", 6},
		{"", 0},
		{"x", 0},
		{"3-1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCPUList(tt.in))
		})
	}
}
