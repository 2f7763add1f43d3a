// ABOUTME: mDNS discovery for chime meter endpoints
// ABOUTME: Advertises local meter servers and finds remote ones
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"sort"
	"time"

	"github.com/Chime-Audio/chime-go/internal/meter"
	"github.com/hashicorp/mdns"
)

// Meter servers advertise under this service type
const serviceType = "_chime-meter._tcp"

// defaultQueryTimeout bounds a single browse round
const defaultQueryTimeout = 3 * time.Second

// Config holds discovery configuration
type Config struct {
	// InstanceName labels the advertised service
	InstanceName string

	// Port is the advertised meter WebSocket port
	Port int

	// QueryTimeout bounds each browse round (default: 3s)
	QueryTimeout time.Duration
}

// Manager advertises a meter server and finds others on the local
// network.
type Manager struct {
	config Config
	ctx    context.Context
	cancel context.CancelFunc
}

// MeterInfo describes a discovered meter server
type MeterInfo struct {
	Name string
	Host string
	Port int
}

// URL returns the WebSocket endpoint the meter serves levels on
func (i MeterInfo) URL() string {
	return fmt.Sprintf("ws://%s:%d%s", i.Host, i.Port, meter.WSPath)
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	if config.QueryTimeout == 0 {
		config.QueryTimeout = defaultQueryTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Advertise announces this meter server until Stop is called. The TXT
// record carries the WebSocket path so visualizers can build the full
// endpoint URL from the discovery response alone.
func (m *Manager) Advertise() error {
	ips, err := advertiseAddrs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.InstanceName,
		serviceType,
		"",
		"",
		m.config.Port,
		ips,
		[]string{"path=" + meter.WSPath},
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Printf("Advertising mDNS service: %s on port %d (type: %s)", m.config.InstanceName, m.config.Port, serviceType)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Find browses for meter servers until wait elapses or the manager
// stops, deduplicating by endpoint. Results are sorted by name.
func (m *Manager) Find(wait time.Duration) []MeterInfo {
	deadline := time.Now().Add(wait)
	seen := make(map[string]MeterInfo)

	for time.Now().Before(deadline) {
		select {
		case <-m.ctx.Done():
			return sorted(seen)
		default:
		}
		m.queryRound(seen)
	}
	return sorted(seen)
}

// queryRound runs one bounded mDNS query, merging results into seen
func (m *Manager) queryRound(seen map[string]MeterInfo) {
	entries := make(chan *mdns.ServiceEntry, 16)
	collected := make(chan struct{})

	go func() {
		defer close(collected)
		for entry := range entries {
			if entry.AddrV4 == nil {
				continue
			}
			info := MeterInfo{
				Name: entry.Name,
				Host: entry.AddrV4.String(),
				Port: entry.Port,
			}
			key := fmt.Sprintf("%s:%d", info.Host, info.Port)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = info
			log.Printf("Discovered meter: %s at %s", info.Name, info.URL())
		}
	}()

	params := &mdns.QueryParam{
		Service: serviceType,
		Domain:  "local",
		Timeout: m.config.QueryTimeout,
		Entries: entries,
	}
	if err := mdns.Query(params); err != nil {
		log.Printf("mDNS query failed: %v", err)
	}
	close(entries)
	<-collected
}

// Stop stops advertising and aborts any Find in progress
func (m *Manager) Stop() {
	m.cancel()
}

func sorted(seen map[string]MeterInfo) []MeterInfo {
	infos := make([]MeterInfo, 0, len(seen))
	for _, info := range seen {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// advertiseAddrs returns the IPv4 addresses worth announcing: up,
// non-loopback interfaces only.
func advertiseAddrs() ([]net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var ips []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.IsLoopback() {
				continue
			}
			if v4 := ipnet.IP.To4(); v4 != nil {
				ips = append(ips, v4)
			}
		}
	}

	if len(ips) == 0 {
		return nil, fmt.Errorf("no usable network interfaces")
	}
	return ips, nil
}
