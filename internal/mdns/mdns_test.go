package mdns

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
)

func TestCleanInstance(t *testing.T) {
	if got := cleanInstance(`front\ end\ 1`); got != "front end 1" {
		t.Fatalf("unexpected instance %q", got)
	}
}

func TestAnnouncementTXT(t *testing.T) {
	txt := Announcement{Board: "r9", Revision: "9"}.TXT()
	if len(txt) != 2 || txt[0] != "board=r9" || txt[1] != "rev=9" {
		t.Fatalf("unexpected txt %v", txt)
	}
	if len(Announcement{}.TXT()) != 0 {
		t.Fatal("expected no txt records for empty announcement")
	}
}

func TestAdvertiseRejectsBadPort(t *testing.T) {
	if _, err := Advertise(Announcement{Instance: "x"}); err == nil {
		t.Fatal("expected error for zero port")
	}
}

func TestHostFromEntry(t *testing.T) {
	e := zeroconf.NewServiceEntry(`bench\ 2`, Service, "local.")
	e.HostName = "bench.local."
	e.Port = 8080
	e.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.20")}
	e.AddrIPv6 = []net.IP{net.ParseIP("fe80::1")}
	e.Text = []string{"rev=9"}

	h := hostFromEntry(e)
	if h.Instance != "bench 2" || h.Port != 8080 || len(h.Addresses) != 2 || h.TXT[0] != "rev=9" {
		t.Fatalf("unexpected host %+v", h)
	}
}
