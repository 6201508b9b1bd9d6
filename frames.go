package main

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"
)

var (
	boxColor   = color.RGBA{0, 255, 0, 0}
	labelColor = color.RGBA{0, 0, 255, 0}
)

// drawDetections draws a bounding box and label for every detected object.
func drawDetections(frame *gocv.Mat, detections []detection) {
	for _, obj := range detections {
		gocv.Rectangle(frame, image.Rect(obj.left, obj.top, obj.left+obj.width, obj.top+obj.height), boxColor, 2)
		text := fmt.Sprintf("%s - %d%%", obj.label, int(100*obj.confidence))
		gocv.PutText(frame, text, image.Pt(obj.left, obj.top), gocv.FontHersheyPlain, 2.2, labelColor, 2)
	}
}

func frameFilename(folder, camera string, now time.Time) string {
	return filepath.Join(folder, fmt.Sprintf("%s_%s.jpg", camera, now.Format("20060102_150405")))
}

// saveFrame writes the frame to the camera's output folder with a
// timestamp based filename, creating the folder when needed.
func saveFrame(frame *gocv.Mat, folder, camera string) (string, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("create output folder %s: %w", folder, err)
	}

	filename := frameFilename(folder, camera, time.Now())
	if ok := gocv.IMWrite(filename, *frame); !ok {
		return "", fmt.Errorf("cannot write frame to %s", filename)
	}
	return filename, nil
}
