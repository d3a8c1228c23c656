package sweep

import (
	"context"
	"fmt"
	"net"
	"reflect"
	"strconv"
	"testing"
	"time"
)

// testListener opens a loopback TCP listener that accepts and closes
// connections for the duration of the test.
func testListener(t *testing.T, addr string) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		t.Skipf("cannot listen on %s: %v", addr, err)
	}
	t.Cleanup(func() {
		_ = ln.Close()
	})
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()
	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("SplitHostPort: %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	return host, port
}

// closedPort returns a loopback port that is guaranteed closed.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	_ = ln.Close()
	return port
}

func newTestScanner(t *testing.T, opts *Options) *Scanner {
	t.Helper()
	s, err := NewScanner(opts)
	if err != nil {
		t.Fatalf("NewScanner() error = %v", err)
	}
	return s
}

func TestScanPortsFixedOrderAndServiceNames(t *testing.T) {
	host, openPort := testListener(t, "127.0.0.1:0")
	closed := closedPort(t)

	s := newTestScanner(t, &Options{
		Network: host,
		Prefix:  32,
		// closed port listed first: output order follows iteration order,
		// not success time
		Ports:       []int{closed, openPort},
		Services:    map[int]string{openPort: "ECHO"},
		TCPTimeout:  200 * time.Millisecond,
		DisableICMP: true,
	})

	got := s.scanPorts(context.Background(), host)
	want := []string{fmt.Sprintf("%d(ECHO)", openPort)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("scanPorts() = %v, want %v", got, want)
	}
}

func TestScanPortsIdempotent(t *testing.T) {
	host, openPort := testListener(t, "127.0.0.1:0")

	s := newTestScanner(t, &Options{
		Network:     host,
		Prefix:      32,
		Ports:       []int{openPort, closedPort(t)},
		TCPTimeout:  200 * time.Millisecond,
		DisableICMP: true,
	})

	first := s.scanPorts(context.Background(), host)
	second := s.scanPorts(context.Background(), host)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("scanPorts() not idempotent: %v vs %v", first, second)
	}
}

func TestScanPortsAllClosed(t *testing.T) {
	s := newTestScanner(t, &Options{
		Network:     "127.0.0.1",
		Prefix:      32,
		Ports:       []int{closedPort(t), closedPort(t)},
		TCPTimeout:  200 * time.Millisecond,
		DisableICMP: true,
	})

	got := s.scanPorts(context.Background(), "127.0.0.1")
	if len(got) != 0 {
		t.Errorf("scanPorts() = %v, want empty", got)
	}
}

func TestServiceName(t *testing.T) {
	s := newTestScanner(t, &Options{
		Network:  "10.0.0.0",
		Prefix:   24,
		Services: map[int]string{8080: "HTTP-ALT", 80: "WEB"},
	})

	tests := []struct {
		port int
		want string
	}{
		{80, "WEB"}, // overlay wins over the built-in map
		{443, "HTTPS"},
		{22, "SSH"},
		{445, "SMB"},
		{3389, "RDP"},
		{8080, "HTTP-ALT"},
		{1234, "Unknown"},
	}
	for _, tt := range tests {
		if got := s.serviceName(tt.port); got != tt.want {
			t.Errorf("serviceName(%d) = %s, want %s", tt.port, got, tt.want)
		}
	}
}
