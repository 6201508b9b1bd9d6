package main

import "strings"

//go:generate go run golang.org/x/tools/cmd/stringer -type=sourceKind
type sourceKind int

const (
	IMAGE sourceKind = iota
	VIDEO
	STREAM
)

func getSourceKind(url string) sourceKind {
	if strings.HasSuffix(url, ".jpg") || strings.HasSuffix(url, ".png") {
		return IMAGE
	} else if strings.HasSuffix(url, ".mp4") || url == "0" {
		return VIDEO
	} else if strings.HasPrefix(url, "rtsp") {
		return STREAM
	}
	return -1
}

type detection struct {
	confidence               float32
	top, left, width, height int
	label                    string
}

type payloadDetection struct {
	Object     string  `json:"object"`
	Confidence float64 `json:"confidence"`
}

// detectionPayload is the per cycle state/attributes message. State is
// "none" exactly when no objects were detected, otherwise the labels
// joined in model output order.
type detectionPayload struct {
	State      string             `json:"state"`
	Detections []payloadDetection `json:"detections"`
	Count      int                `json:"count"`
}
