// ABOUTME: Entry point for the headless chime meter server
// ABOUTME: Loops a music file and broadcasts output levels over WebSocket
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Chime-Audio/chime-go/internal/discovery"
	"github.com/Chime-Audio/chime-go/internal/meter"
	"github.com/Chime-Audio/chime-go/internal/version"
	"github.com/Chime-Audio/chime-go/pkg/audio"
	"github.com/Chime-Audio/chime-go/pkg/audio/device"
	"github.com/Chime-Audio/chime-go/pkg/audio/track"
	"github.com/Chime-Audio/chime-go/pkg/chime"
)

var (
	port      = flag.Int("port", 8930, "Meter WebSocket port")
	name      = flag.String("name", "", "Instance name (default: hostname-chime-meter)")
	logFile   = flag.String("log-file", "chime-meter.log", "Log file path")
	noMDNS    = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	audioFile = flag.String("audio", "", "Audio file to loop (MP3, FLAC, WAV)")
	volume    = flag.Float64("volume", 0.8, "Master volume (0.0-1.0)")
	find      = flag.Bool("find", false, "Browse for meter servers on the network and exit")
)

func main() {
	flag.Parse()

	// Log to both file and stdout
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()
	log.SetOutput(io.MultiWriter(os.Stdout, f))

	if *find {
		findMeters()
		return
	}

	if *audioFile == "" {
		log.Fatalf("-audio is required (MP3, FLAC, or WAV file to loop)")
	}

	instanceName := *name
	if instanceName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		instanceName = fmt.Sprintf("%s-chime-meter", hostname)
	}

	log.Printf("Starting %s meter %s: %s on port %d", version.Product, version.Version, instanceName, *port)
	log.Printf("Press Ctrl-C to stop")

	provider := device.NewProvider(&device.OtoDriver{}, audio.DefaultFormat)
	ctrl, err := chime.NewController(chime.Config{
		Provider: provider,
		Volume:   *volume,
	})
	if err != nil {
		log.Fatalf("Failed to create controller: %v", err)
	}

	tr, err := track.New(track.Config{Path: *audioFile, Loop: true})
	if err != nil {
		log.Fatalf("Failed to load audio: %v", err)
	}
	ctrl.AddSound("music", tr)

	levelMeter := meter.New()
	ctrl.SetAnalysis(levelMeter)

	ctrl.PlaySound("music")
	if ctrl.AcquireOutput() == nil {
		log.Fatalf("No audio device available")
	}

	var mdnsManager *discovery.Manager
	if !*noMDNS {
		mdnsManager = discovery.NewManager(discovery.Config{
			InstanceName: instanceName,
			Port:         *port,
		})
		if err := mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		}
	}

	srv := meter.NewServer(meter.ServerConfig{Port: *port}, levelMeter)

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received %v signal, shutting down gracefully...", sig)
		srv.Stop()
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Meter server error: %v", err)
	}

	if mdnsManager != nil {
		mdnsManager.Stop()
	}
	ctrl.StopAllSounds()
	ctrl.Dispose()
	log.Printf("Meter server stopped")
}

// findMeters browses the local network and prints what it finds
func findMeters() {
	log.Printf("Browsing for meter servers...")

	mgr := discovery.NewManager(discovery.Config{})
	defer mgr.Stop()

	infos := mgr.Find(5 * time.Second)
	if len(infos) == 0 {
		log.Printf("No meter servers found")
		return
	}
	for _, info := range infos {
		fmt.Printf("%s at %s\n", info.Name, info.URL())
	}
}
