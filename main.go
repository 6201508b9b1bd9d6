// What it does:
//
// This program polls camera streams on a fixed interval and uses a deep
// neural network to perform object detection on each captured frame.
// Detection results are published to an MQTT broker following the Home
// Assistant discovery convention, so the cameras show up automatically
// as sensors in the hub. Frames with detections can optionally be saved
// to a per camera output folder.
//
// How to run:
//
// 		go run . -c config/config.json
//
// Supported camera sources:
//   - images (*.png, *.jpg)
//   - webcam (0)
//   - video (*.mp4)
//   - rtsp stream
//

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

func main() {
	configPath := flag.String("c", "config/config.json", "Path to the configuration file")
	flag.Parse()

	// optional .env for secrets, real environment still wins
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Warn().Msgf("Error loading .env file: %v", err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Msgf("Cannot load configuration: %v", err)
	}
	setLogLevel(cfg.LogLevel)

	logConfigurations(map[string]string{
		"config":     *configPath,
		"model":      cfg.ModelPath,
		"cameras":    strconv.Itoa(len(cfg.Cameras)),
		"interval":   strconv.Itoa(cfg.Interval),
		"confidence": strconv.Itoa(cfg.Confidence),
		"broker":     fmt.Sprintf("%s:%d", cfg.MQTT.Broker, cfg.MQTT.Port),
	})

	classes, err := readClasses(cfg.ClassesPath)
	if err != nil {
		log.Fatal().Msgf("Cannot read class labels: %v", err)
	}

	detector, err := newDetector(cfg, classes)
	if err != nil {
		log.Fatal().Msgf("Cannot load detection model: %v", err)
	}
	defer detector.Close()

	publisher, err := newPublisher(cfg.MQTT)
	if err != nil {
		log.Fatal().Msgf("Cannot connect to MQTT broker: %v", err)
	}
	defer publisher.Close()

	for _, cam := range cfg.Cameras {
		if err := publisher.PublishDiscovery(cam); err != nil {
			log.Fatal().Msgf("Cannot publish discovery config: %v", err)
		}
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	runLoop(cfg, captureSource{}, detector, publisher, sigs)
	log.Info().Msg("Shutdown complete")
}

// runLoop sweeps all cameras, then sleeps the remainder of the interval
// so that consecutive sweep starts are at least one interval apart.
// A termination signal stops the loop at the next sleep.
func runLoop(cfg *Config, src frameSource, det objectDetector, pub statePublisher, stop <-chan os.Signal) {
	interval := time.Duration(cfg.Interval) * time.Second
	log.Info().Msgf("Starting detection loop, sweeping %d camera(s) every %v", len(cfg.Cameras), interval)

	for {
		start := time.Now()
		runSweep(cfg.Cameras, src, det, pub)

		sleep := interval - time.Since(start)
		if sleep < 0 {
			sleep = 0
		}
		select {
		case sig := <-stop:
			log.Info().Msgf("Caught signal %v, stopping", sig)
			return
		case <-time.After(sleep):
		}
	}
}

// runSweep processes the cameras one at a time. A failing camera never
// stops the rest of the sweep.
func runSweep(cameras []CameraConfig, src frameSource, det objectDetector, pub statePublisher) {
	for _, cam := range cameras {
		runCycle(cam, src, det, pub)
	}
}

// runCycle is one camera's capture, detect, persist and publish pass.
// Every failure is logged and contained here, nothing bubbles past a
// single camera's cycle.
func runCycle(cam CameraConfig, src frameSource, det objectDetector, pub statePublisher) {
	frame := gocv.NewMat()
	defer frame.Close()

	if err := src.Capture(cam, &frame); err != nil {
		log.Error().Msgf("Camera %s: %v", cam.Name, err)
		return
	}

	detections := det.Detect(&frame)
	log.Debug().Msgf("Camera %s: %d object(s) detected", cam.Name, len(detections))

	if len(detections) > 0 && cam.OutputFolder != "" {
		drawDetections(&frame, detections)
		filename, err := saveFrame(&frame, cam.OutputFolder, cam.Name)
		if err != nil {
			// persistence failures never block the publish
			log.Error().Msgf("Camera %s: %v", cam.Name, err)
		} else {
			log.Info().Msgf("Saved frame to %s", filename)
		}
	}

	payload := buildPayload(detections)
	if err := pub.PublishState(cam, payload); err != nil {
		log.Error().Msgf("Camera %s: %v", cam.Name, err)
		return
	}
	log.Info().Msgf("Published to %s: state=%q count=%d", cam.Topic, payload.State, payload.Count)
}
