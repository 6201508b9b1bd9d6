package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

// warmupFrames is the number of throwaway reads done after opening a
// stream. They drain the decoder buffer and give the camera time to
// settle auto exposure, so the frame we keep is the most recent one.
const warmupFrames = 5

type frameSource interface {
	Capture(cam CameraConfig, dst *gocv.Mat) error
}

// captureSource opens the camera device fresh on every call and releases
// it right after the read, so no stream stays connected during the
// inter-sweep sleep.
type captureSource struct{}

func (captureSource) Capture(cam CameraConfig, dst *gocv.Mat) error {
	kind := getSourceKind(cam.URL)
	log.Debug().Msgf("Capturing from device (%v): %v", kind, cam.URL)

	switch kind {
	case IMAGE:
		img := gocv.IMRead(cam.URL, gocv.IMReadColor)
		if img.Empty() {
			return fmt.Errorf("cannot read image from: %v", cam.URL)
		}
		defer img.Close()
		img.CopyTo(dst)
		return nil

	case VIDEO, STREAM:
		var capture *gocv.VideoCapture
		var err error
		if kind == STREAM {
			// open capture device with the ffmpeg backend
			capture, err = gocv.OpenVideoCaptureWithAPI(cam.URL, gocv.VideoCaptureFFmpeg)
		} else {
			capture, err = gocv.OpenVideoCapture(cam.URL)
		}
		if err != nil {
			return fmt.Errorf("cannot open video capture device %v: %w", cam.URL, err)
		}
		defer capture.Close()

		for i := 0; i < warmupFrames; i++ {
			capture.Grab(1)
		}

		if ok := capture.Read(dst); !ok || dst.Empty() {
			return fmt.Errorf("cannot read frame from: %v", cam.URL)
		}
		return nil
	}

	return fmt.Errorf("unsupported capture source: %v", cam.URL)
}
