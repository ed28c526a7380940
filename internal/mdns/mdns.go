package mdns

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

// Service is the DNS-SD type under which front-end status servers announce.
const Service = "_sdrfront._tcp"

// Host is a discovered front-end status server.
type Host struct {
	Instance  string
	Hostname  string
	Addresses []net.IP
	Port      int
	TXT       []string
}

// Announcement describes what Advertise publishes.
type Announcement struct {
	Instance string
	Port     int
	Board    string
	Revision string
}

// TXT returns the announcement's TXT records.
func (a Announcement) TXT() []string {
	var txt []string
	if a.Board != "" {
		txt = append(txt, "board="+a.Board)
	}
	if a.Revision != "" {
		txt = append(txt, "rev="+a.Revision)
	}
	return txt
}

// Advertise registers the status server on the local link until the returned
// stop function is called.
func Advertise(a Announcement) (func(), error) {
	if a.Port <= 0 {
		return nil, fmt.Errorf("advertise: invalid port %d", a.Port)
	}
	server, err := zeroconf.Register(a.Instance, Service, "local.", a.Port, a.TXT(), nil)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", Service, err)
	}
	return server.Shutdown, nil
}

// Discover browses for status servers until timeout elapses and returns them
// deduplicated by host and port.
func Discover(ctx context.Context, timeout time.Duration) ([]Host, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("resolver error: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	resultMap := make(map[string]Host)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case e, ok := <-entries:
				if !ok {
					return
				}
				if e == nil {
					continue
				}
				h := hostFromEntry(e)
				resultMap[fmt.Sprintf("%s|%d", h.Hostname, h.Port)] = h
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, Service, "local.", entries); err != nil {
		return nil, fmt.Errorf("browse error: %w", err)
	}

	<-done

	out := make([]Host, 0, len(resultMap))
	for _, h := range resultMap {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Instance < out[j].Instance })
	return out, nil
}

func hostFromEntry(e *zeroconf.ServiceEntry) Host {
	addrs := make([]net.IP, 0, len(e.AddrIPv4)+len(e.AddrIPv6))
	addrs = append(addrs, e.AddrIPv4...)
	addrs = append(addrs, e.AddrIPv6...)
	return Host{
		Instance:  cleanInstance(e.Instance),
		Hostname:  e.HostName,
		Addresses: addrs,
		Port:      e.Port,
		TXT:       append([]string{}, e.Text...),
	}
}

// cleanInstance removes Zeroconf escape sequences: "\ " => " "
func cleanInstance(s string) string {
	return strings.ReplaceAll(s, `\ `, " ")
}
