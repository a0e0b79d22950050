/*
DESCRIPTION
  Iidcstats runs a short capture session against the simulated camera and
  plots dropped-frame count per poll cycle over time, as a standalone
  diagnostic for tuning dropframes/capture-rate settings offline.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Iidcstats is a small offline tool: it drives a simulated camera at a
// given rate for a fixed duration, samples GetImage's dropped-count each
// cycle, and renders the series to a PNG with gonum/plot.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ausocean/utils/logging"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ausocean/iidc/device"
	"github.com/ausocean/iidc/device/sim"
	"github.com/ausocean/iidc/session"
)

func main() {
	rate := flag.Float64("rate", 30, "Capture rate to simulate")
	duration := flag.Duration("duration", 5*time.Second, "How long to sample")
	out := flag.String("out", "drops.png", "Output PNG path")
	flag.Parse()

	log := logging.New(logging.Info, os.Stderr, true)

	modes := []device.ModeCapability{{
		Mode:        device.VideoMode{ID: 0, Width: 320, Height: 240},
		ColorCoding: device.ColorCodingMono8,
		Framerates:  []float64{*rate},
	}}
	cam := sim.New("Example Vendor", "IIDC-Sim-1", modes)
	lib := &sim.Library{Cameras: []device.Camera{cam}}
	engine := session.NewEngine(func() (device.Library, error) { return lib, nil }, log)

	s, err := engine.Open(session.Request{DeviceIndex: 0, CaptureRate: *rate, DropFrames: true, Logger: log})
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer s.Close()

	if err := s.Start(*rate, true, time.Time{}, nil); err != nil {
		fmt.Fprintln(os.Stderr, "start:", err)
		os.Exit(1)
	}
	defer s.Stop()

	ticker := time.NewTicker(time.Duration(float64(time.Second) / *rate))
	defer ticker.Stop()
	deadline := time.Now().Add(*duration)

	var drops plotter.XYs
	var n float64
	ctx := context.Background()
	for time.Now().Before(deadline) {
		// Overfeed each poll interval so a drop-newest cycle has something
		// to discard, the way a camera running faster than the consumer
		// polls would.
		cam.Feed(&device.Frame{Image: make([]byte, 320*240), ColorCoding: device.ColorCodingMono8, Width: 320, Height: 240})
		cam.Feed(&device.Frame{Image: make([]byte, 320*240), ColorCoding: device.ColorCodingMono8, Width: 320, Height: 240})

		if _, _, err := s.GetImage(ctx, session.CheckPoll, session.GetImageOptions{}); err != nil {
			fmt.Fprintln(os.Stderr, "poll:", err)
			break
		}
		dropped, _, err := s.GetImage(ctx, session.CheckCommit, session.GetImageOptions{})
		if err != nil {
			fmt.Fprintln(os.Stderr, "commit:", err)
			break
		}
		drops = append(drops, plotter.XY{X: n, Y: float64(dropped)})
		n++
		<-ticker.C
	}

	if err := render(*out, drops); err != nil {
		fmt.Fprintln(os.Stderr, "render:", err)
		os.Exit(1)
	}

	fmt.Printf("avg_decompresstime=%.6f avg_gfxtime=%.6f samples=%d -> %s\n",
		s.AvgDecompressTime(), s.AvgGfxTime(), len(drops), *out)
}

// render draws the dropped-frame-per-cycle series and saves it to path.
func render(path string, drops plotter.XYs) error {
	p := plot.New()
	p.Title.Text = "dropped frames per poll cycle"
	p.X.Label.Text = "cycle"
	p.Y.Label.Text = "dropped"

	line, err := plotter.NewLine(drops)
	if err != nil {
		return err
	}
	p.Add(line)

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
