package runner

import (
	"strings"
	"testing"
	"time"

	"github.com/projectdiscovery/netsweep/pkg/sweep"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 30, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a-hostname-that-is-far-too-long-for-one-cell", 10, "a-hostname..."},
		{"", 30, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestJoinPorts(t *testing.T) {
	if got := joinPorts(nil); got != "None" {
		t.Errorf("joinPorts(nil) = %q, want None", got)
	}
	if got := joinPorts([]string{"80(HTTP)", "22(SSH)"}); got != "80(HTTP), 22(SSH)" {
		t.Errorf("joinPorts() = %q", got)
	}
}

func TestRenderTable(t *testing.T) {
	records := []*sweep.HostRecord{
		{
			Address:      "192.168.1.1",
			Hostname:     "router.lan",
			ResponseTime: 12 * time.Millisecond,
			OpenPorts:    []string{"80(HTTP)", "443(HTTPS)"},
			LastSeen:     time.Date(2026, 8, 31, 10, 30, 5, 0, time.UTC),
		},
		{
			Address:      "192.168.1.20",
			Hostname:     "a-very-long-hostname-that-should-get-truncated.example.internal",
			ResponseTime: 340 * time.Millisecond,
			OpenPorts:    nil,
			LastSeen:     time.Date(2026, 8, 31, 10, 30, 7, 0, time.UTC),
		},
	}

	out := renderTable(records)
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("rendered %d lines, want 4 (header, separator, 2 rows):\n%s", len(lines), out)
	}
	for _, column := range tableHeader {
		if !strings.Contains(lines[0], column) {
			t.Errorf("header missing column %q: %s", column, lines[0])
		}
	}
	if !strings.Contains(out, "12ms") {
		t.Errorf("missing response time: %s", out)
	}
	if !strings.Contains(out, "80(HTTP), 443(HTTPS)") {
		t.Errorf("missing port list: %s", out)
	}
	if !strings.Contains(out, "None") {
		t.Errorf("missing None placeholder for empty port list: %s", out)
	}
	if !strings.Contains(out, "...") {
		t.Errorf("long hostname not truncated: %s", out)
	}
	if strings.Contains(out, "example.internal") {
		t.Errorf("hostname rendered untruncated: %s", out)
	}
}

func TestParseServiceMap(t *testing.T) {
	tests := []struct {
		name string
		data string
		want map[int]string
	}{
		{
			name: "valid map",
			data: `{"8080": "HTTP-ALT", "9000": "SONAR"}`,
			want: map[int]string{8080: "HTTP-ALT", 9000: "SONAR"},
		},
		{
			name: "invalid ports dropped",
			data: `{"0": "ZERO", "70000": "TOO-BIG", "abc": "NAN", "443": "HTTPS"}`,
			want: map[int]string{443: "HTTPS"},
		},
		{
			name: "not json",
			data: `ports: 80`,
			want: map[int]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseServiceMap([]byte(tt.data))
			if len(got) != len(tt.want) {
				t.Fatalf("parseServiceMap() = %v, want %v", got, tt.want)
			}
			for port, name := range tt.want {
				if got[port] != name {
					t.Errorf("port %d = %q, want %q", port, got[port], name)
				}
			}
		})
	}
}
