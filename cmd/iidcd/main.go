/*
DESCRIPTION
  Iidcd is the capture engine's long-running host process: it opens one
  session against device index 0, starts capture, feeds frames to an
  optional recording sink, and reports readiness/liveness to systemd.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Iidcd runs the Capture Session as a standalone daemon: one camera, one
// session, optional recording, systemd readiness/watchdog notification and
// graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/iidc/device"
	"github.com/ausocean/iidc/device/sim"
	"github.com/ausocean/iidc/encoder"
	"github.com/ausocean/iidc/mode"
	"github.com/ausocean/iidc/session"
)

// Logging related constants, following the teacher's cmd/looper layout.
const (
	logPath      = "/var/log/iidcd/iidcd.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logSuppress  = true
)

func main() {
	deviceIndex := flag.Int("device", 0, "Camera index to open")
	targetMovie := flag.String("target_movie", "", "Recording target path, optionally :CodecType=/:CodecSettings=")
	captureRate := flag.Float64("rate", 30, "Requested capture framerate")
	dropFrames := flag.Bool("dropframes", true, "Drop to newest frame on a full consumer handoff")
	async := flag.Bool("async", false, "Run capture on the background Recorder goroutine")
	logLevel := flag.Int("loglevel", int(logging.Debug), "Log verbosity")
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(int8(*logLevel), io.MultiWriter(fileLog, os.Stderr), logSuppress)

	lib := demoLibrary()
	engine := session.NewEngine(func() (device.Library, error) { return lib, nil }, log)

	req := session.Request{
		DeviceIndex: *deviceIndex,
		CaptureRate: *captureRate,
		DropFrames:  *dropFrames,
		TargetMovie: *targetMovie,
		Logger:      log,
	}
	if *async {
		req.RecordingFlags |= session.FlagAsync
	}

	s, err := engine.Open(req)
	if err != nil {
		log.Fatal("could not open session", "error", err)
	}

	var newSink func() encoder.Sink
	if *targetMovie != "" {
		newSink = func() encoder.Sink { return &encoder.FileSink{} }
	}

	if err := s.Start(*captureRate, *dropFrames, time.Time{}, newSink); err != nil {
		log.Fatal("could not start session", "error", err)
	}
	log.Info("capture started", "device", *deviceIndex, "rate", *captureRate)

	stopFeed := feedSyntheticFrames(lib.Cameras[*deviceIndex].(*sim.Camera), *captureRate)
	defer stopFeed()

	notifySystemd(log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	log.Info("shutting down")
	if err := s.Stop(); err != nil {
		log.Error("error stopping session", "error", err)
	}
	if err := s.Close(); err != nil {
		log.Error("error closing session", "error", err)
	}
}

// demoLibrary builds the single simulated camera this reference daemon
// drives, standing in for a real libdc1394 bus enumeration the way
// device/sim stands in for hardware throughout this module's tests.
func demoLibrary() *sim.Library {
	modes := []device.ModeCapability{
		{
			Mode:        device.VideoMode{ID: 0, Width: 640, Height: 480},
			ColorCoding: device.ColorCodingMono8,
			Framerates:  mode.StandardFramerates,
		},
		{
			Mode:        device.VideoMode{ID: 1, Width: 1280, Height: 960},
			ColorCoding: device.ColorCodingYUV422,
			Framerates:  []float64{7.5, 15, 30},
		},
	}
	return &sim.Library{Cameras: []device.Camera{sim.New("Example Vendor", "IIDC-Sim-1", modes)}}
}

// feedSyntheticFrames periodically pushes a frame into cam's queue at
// approximately rate Hz, standing in for the camera's isochronous receive
// engine. It returns a function that stops the feed goroutine.
func feedSyntheticFrames(cam *sim.Camera, rate float64) func() {
	if rate <= 0 || rate == mode.FastestFPS {
		rate = 30
	}
	ctx, cancel := context.WithCancel(context.Background())
	ticker := time.NewTicker(time.Duration(float64(time.Second) / rate))
	go func() {
		defer ticker.Stop()
		var n int64
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n++
				img := make([]byte, 640*480)
				cam.Feed(&device.Frame{
					Image:         img,
					ColorCoding:   device.ColorCodingMono8,
					Width:         640,
					Height:        480,
					TimestampUsec: n * int64(1e6/rate),
				})
			}
		}
	}()
	return cancel
}

// notifySystemd sends the readiness notification and, if the unit
// requested a watchdog interval, starts a goroutine pinging it at half
// that interval.
func notifySystemd(log logging.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		log.Warning("systemd notify failed", "error", err)
	}
	if !sent {
		return
	}
	usec, err := strconv.Atoi(os.Getenv("WATCHDOG_USEC"))
	if err != nil || usec <= 0 {
		return
	}
	interval := time.Duration(usec) * time.Microsecond / 2
	go func() {
		for range time.Tick(interval) {
			if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
				log.Warning("systemd watchdog notify failed", "error", err)
			}
		}
	}()
}
