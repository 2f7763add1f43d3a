// ABOUTME: Entry point for the chime soundboard
// ABOUTME: Parses CLI flags and runs the interactive soundboard
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
	"github.com/Chime-Audio/chime-go/internal/ui"
	"github.com/Chime-Audio/chime-go/internal/version"
	"github.com/Chime-Audio/chime-go/pkg/audio"
	"github.com/Chime-Audio/chime-go/pkg/audio/device"
	"github.com/Chime-Audio/chime-go/pkg/audio/synth"
	"github.com/Chime-Audio/chime-go/pkg/audio/track"
	"github.com/Chime-Audio/chime-go/pkg/chime"
	tea "github.com/charmbracelet/bubbletea"
)

const musicSound = "music"

var (
	volume     = flag.Float64("volume", 0.8, "Initial master volume (0.0-1.0)")
	musicFile  = flag.String("music", "", "Music file to loop (MP3, FLAC, WAV)")
	meterPort  = flag.Int("meter-port", 8930, "Meter WebSocket port (0 to disable)")
	enableMDNS = flag.Bool("mdns", false, "Advertise the meter via mDNS")
	name       = flag.String("name", "", "Instance name (default: hostname-chime)")
	logFile    = flag.String("log-file", "chime.log", "Log file path")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	streamLogs = flag.Bool("stream-logs", false, "Alias for -no-tui")
)

func main() {
	flag.Parse()

	useTUI := !(*noTUI || *streamLogs)

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file, the terminal belongs to the TUI
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	instanceName := *name
	if instanceName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		instanceName = fmt.Sprintf("%s-chime", hostname)
	}

	log.Printf("Starting %s %s: %s", version.Product, version.Version, instanceName)

	// Audio engine
	provider := device.NewProvider(&device.OtoDriver{}, audio.DefaultFormat)
	ctrl, err := chime.NewController(chime.Config{
		Provider: provider,
		Volume:   *volume,
	})
	if err != nil {
		log.Fatalf("Failed to create controller: %v", err)
	}

	registerPresets(ctrl)

	var music *track.Track
	if *musicFile != "" {
		music, err = track.New(track.Config{Path: *musicFile, Loop: true})
		if err != nil {
			log.Fatalf("Failed to load music: %v", err)
		}
		ctrl.AddSound(musicSound, music)
		ctrl.PlaySound(musicSound)
	}

	// Meter tap and broadcast server
	levelMeter := meter.New()
	ctrl.SetAnalysis(levelMeter)

	var meterServer *meter.Server
	if *meterPort > 0 {
		meterServer = meter.NewServer(meter.ServerConfig{Port: *meterPort}, levelMeter)
		go func() {
			if err := meterServer.Start(); err != nil {
				log.Printf("Meter server stopped: %v", err)
			}
		}()
	}

	var mdnsManager *discovery.Manager
	if *enableMDNS && *meterPort > 0 {
		mdnsManager = discovery.NewManager(discovery.Config{
			InstanceName: instanceName,
			Port:         *meterPort,
		})
		if err := mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		}
	}

	// TUI setup
	var tuiProg *tea.Program
	var control *ui.Control

	if useTUI {
		control = ui.NewControl()
		model := ui.NewModel(boardSounds(ctrl), *musicFile, int(*volume*100), control)
		tuiProg = ui.Run(model)
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()

		go handleControl(ctrl, control)
		go levelsUpdateLoop(levelMeter, tuiProg)
		go statusUpdateLoop(ctrl, music, tuiProg)
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if control != nil {
		select {
		case <-control.Quits:
			log.Printf("Quit requested from TUI")
		case <-sigChan:
			log.Printf("Shutdown signal received")
		}
	} else {
		<-sigChan
		log.Printf("Shutdown signal received")
	}

	if tuiProg != nil {
		tuiProg.Quit()
	}
	if mdnsManager != nil {
		mdnsManager.Stop()
	}
	if meterServer != nil {
		meterServer.Stop()
	}

	ctrl.StopAllSounds()
	ctrl.Dispose()
	log.Printf("Soundboard stopped")
}

// registerPresets fills the board with the built-in effects
func registerPresets(ctrl *chime.Controller) {
	ctrl.AddSound("coin", synth.Coin())
	ctrl.AddSound("laser", synth.Laser())
	ctrl.AddSound("explosion", synth.Explosion())
	ctrl.AddSound("jump", synth.Jump())
	ctrl.AddSound("powerup", synth.Powerup())
}

// boardSounds returns the playable names shown in the TUI
func boardSounds(ctrl *chime.Controller) []string {
	return ctrl.ListSounds()
}

// handleControl applies TUI actions to the controller
func handleControl(ctrl *chime.Controller, control *ui.Control) {
	lastVolume := ctrl.Volume()

	for {
		select {
		case name := <-control.Plays:
			ctrl.PlaySound(name)
		case v := <-control.Volumes:
			ctrl.SetVolume(v)
			if v > 0 {
				lastVolume = v
			}
		case muted := <-control.Mutes:
			if muted {
				if v := ctrl.Volume(); v > 0 {
					lastVolume = v
				}
				ctrl.SetVolume(0)
			} else {
				ctrl.SetVolume(lastVolume)
			}
		case <-control.Stops:
			ctrl.StopAllSounds()
		}
	}
}

// statusUpdateLoop keeps the TUI in sync with the controller: the
// registry, the effective volume, and whether the music bed is still
// streaming.
func statusUpdateLoop(ctrl *chime.Controller, music *track.Track, prog *tea.Program) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		volume := int(ctrl.Volume() * 100)
		msg := ui.StatusMsg{
			Sounds: ctrl.ListSounds(),
			Volume: &volume,
		}
		if music != nil {
			playing := music.Playing()
			msg.MusicPlaying = &playing
		}
		prog.Send(msg)
	}
}

// levelsUpdateLoop feeds meter snapshots into the TUI
func levelsUpdateLoop(m *meter.Meter, prog *tea.Program) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		levels := m.Levels()
		if len(levels.Peak) == 0 {
			continue
		}
		prog.Send(ui.LevelsMsg{Peak: levels.Peak, RMS: levels.RMS})
	}
}
