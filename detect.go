package main

import (
	"fmt"
	"image"
	"math"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

const blobSize = 416

// this value controls overlapping bounding boxes
// default value 0.7 seems to recognize two overlapping objects
// but dont draw duplicate bounding box from the same object
const intersectionThreshold = 0.7

type objectDetector interface {
	Detect(frame *gocv.Mat) []detection
}

// dnnDetector wraps a pre-trained DNN object detection model. The network
// is loaded once at startup and reused read-only for every cycle.
type dnnDetector struct {
	net       gocv.Net
	classes   []string
	threshold float32
}

func newDetector(cfg *Config, classes []string) (*dnnDetector, error) {
	net := gocv.ReadNet(cfg.ModelPath, cfg.ModelConfig)
	if net.Empty() {
		return nil, fmt.Errorf("cannot read network model from: %v %v", cfg.ModelPath, cfg.ModelConfig)
	}
	net.SetPreferableBackend(gocv.ParseNetBackend(cfg.Backend))
	net.SetPreferableTarget(gocv.ParseNetTarget(cfg.Target))

	return &dnnDetector{
		net:       net,
		classes:   classes,
		threshold: float32(cfg.Confidence) / 100,
	}, nil
}

func (d *dnnDetector) Close() {
	d.net.Close()
}

func (d *dnnDetector) Detect(frame *gocv.Mat) []detection {
	// convert image Mat to a blob that the object detector can analyze
	ratio := 1.0 / 255.0
	mean := gocv.NewScalar(0, 0, 0, 0)
	blob := gocv.BlobFromImage(*frame, ratio, image.Pt(blobSize, blobSize), mean, true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	// run a forward pass thru the network
	layerNames := d.net.GetLayerNames()
	var outputNames []string
	for _, l := range d.net.GetUnconnectedOutLayers() {
		outputNames = append(outputNames, layerNames[l-1])
	}
	outputs := d.net.ForwardLayers(outputNames)
	defer func() {
		for i := range outputs {
			// nolint: errcheck
			outputs[i].Close()
		}
	}()

	return d.parseOutputs(frame, outputs)
}

// parseOutputs analyzes the results from the detector network, which
// produces output blobs where each row is a vector of float values
// [centerX, centerY, width, height, objectness, class scores...]
func (d *dnnDetector) parseOutputs(frame *gocv.Mat, results []gocv.Mat) []detection {
	detections := []detection{}

	for _, output := range results {
		data, err := output.DataPtrFloat32()
		if err != nil {
			log.Warn().Msgf("No data in detector output: %v", err)
			continue
		}

		cols := output.Cols()
		if cols <= 0 {
			continue
		}

		for j := 0; j+cols <= output.Total(); j += cols {
			row := data[j : j+cols]
			scores := row[5:]
			classID, confidence := classIDAndConfidence(scores)

			if confidence <= d.threshold {
				continue
			}

			centerX := int(row[0] * float32(frame.Cols()))
			centerY := int(row[1] * float32(frame.Rows()))
			width := int(row[2] * float32(frame.Cols()))
			height := int(row[3] * float32(frame.Rows()))

			candidate := detection{
				confidence: confidence,
				top:        centerY - height/2,
				left:       centerX - width/2,
				width:      width,
				height:     height,
				label:      d.className(classID),
			}

			detections = mergeDetection(detections, candidate)
		}
	}

	return detections
}

func (d *dnnDetector) className(classID int) string {
	if classID < 0 || classID >= len(d.classes) {
		return fmt.Sprintf("class_%d", classID)
	}
	return d.classes[classID]
}

// mergeDetection appends the candidate unless it overlaps an already
// detected object, in which case the higher confidence box wins.
func mergeDetection(detections []detection, candidate detection) []detection {
	newObject := true
	for i, obj := range detections {
		if intersectionOverUnion(candidate, obj) > intersectionThreshold {
			newObject = false
			if candidate.confidence > obj.confidence {
				detections[i] = candidate
			}
		}
	}

	if newObject {
		detections = append(detections, candidate)
	}
	return detections
}

func intersectionOverUnion(a, b detection) float64 {
	boxA := []int{a.left, a.top, a.left + a.width, a.top + a.height}
	boxB := []int{b.left, b.top, b.left + b.width, b.top + b.height}

	// determine the (x, y)-coordinates of the intersection rectangle
	xA := math.Max(float64(boxA[0]), float64(boxB[0]))
	yA := math.Max(float64(boxA[1]), float64(boxB[1]))
	xB := math.Min(float64(boxA[2]), float64(boxB[2]))
	yB := math.Min(float64(boxA[3]), float64(boxB[3]))

	interArea := math.Max(0, xB-xA+1) * math.Max(0, yB-yA+1)

	boxAArea := float64(boxA[2]-boxA[0]+1) * float64(boxA[3]-boxA[1]+1)
	boxBArea := float64(boxB[2]-boxB[0]+1) * float64(boxB[3]-boxB[1]+1)

	return interArea / (boxAArea + boxBArea - interArea)
}

// classIDAndConfidence retrieves the best scoring class from given row.
func classIDAndConfidence(scores []float32) (int, float32) {
	res := 0
	max := float32(0.0)
	for i, y := range scores {
		if y > max {
			max = y
			res = i
		}
	}
	return res, max
}
