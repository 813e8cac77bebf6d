package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ayusman/repcoach/internal/app"
	"github.com/ayusman/repcoach/internal/config"
	"github.com/ayusman/repcoach/internal/server"
	"github.com/ayusman/repcoach/internal/store"
	"github.com/ayusman/repcoach/internal/telemetry"
	"github.com/ayusman/repcoach/internal/tray"
)

func main() {
	fmt.Println("RepCoach - Camera Exercise Tracking")

	cfg := config.Load()

	dataDir := cfg.DataDir
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		dataDir = filepath.Join(homeDir, ".repcoach")
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "repcoach.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Telemetry is optional; an unset broker disables it.
	var pub *telemetry.Publisher
	if cfg.MQTTBroker != "" {
		pub, err = telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic)
		if err != nil {
			log.Printf("Telemetry disabled: %v", err)
		} else {
			defer pub.Close()
		}
	}

	a := app.New(app.Config{
		Store:        st,
		Telemetry:    pub,
		CameraID:     cfg.CameraID,
		MotionThresh: cfg.MotionThresh,
	})

	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}
	defer a.Stop()
	a.SetEnabled(true)

	srv := server.New(server.Config{
		StaticDir:  cfg.StaticDir,
		Store:      st,
		Camera:     a.Camera(),
		Controller: a.Controller(),
	})

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.ServerAddr)
		if err := srv.ListenAndServe(cfg.ServerAddr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	tr := tray.New()
	tr.OnToggle(func(enabled bool) {
		a.SetEnabled(enabled)
	})
	tr.OnCalibrate(func() {
		a.Controller().StartCalibration()
	})
	tr.OnQuit(func() {
		a.Stop()
	})
	a.OnStatus(tr.SetStatus)

	// Blocks until quit.
	tr.Run()
}
