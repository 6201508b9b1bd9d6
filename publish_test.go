package main

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestBuildPayloadEmpty(t *testing.T) {
	payload := buildPayload(nil)

	if payload.State != "none" {
		t.Errorf("got state %q, want none", payload.State)
	}
	if payload.Count != 0 {
		t.Errorf("got count %d, want 0", payload.Count)
	}
	if len(payload.Detections) != 0 {
		t.Errorf("got %d detections, want 0", len(payload.Detections))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"state":"none","detections":[],"count":0}`
	if string(body) != want {
		t.Errorf("got payload %s, want %s", body, want)
	}
}

func TestBuildPayloadRoundTrip(t *testing.T) {
	payload := buildPayload([]detection{
		{label: "person", confidence: 0.9},
		{label: "car", confidence: 0.4},
	})

	want := detectionPayload{
		State: "person, car",
		Detections: []payloadDetection{
			{Object: "person", Confidence: 0.9},
			{Object: "car", Confidence: 0.4},
		},
		Count: 2,
	}
	if !reflect.DeepEqual(payload, want) {
		t.Errorf("got payload %+v, want %+v", payload, want)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	wantJSON := `{"state":"person, car","detections":[{"object":"person","confidence":0.9},{"object":"car","confidence":0.4}],"count":2}`
	if string(body) != wantJSON {
		t.Errorf("got payload %s, want %s", body, wantJSON)
	}
}

func TestBuildPayloadStateOrder(t *testing.T) {
	payload := buildPayload([]detection{
		{label: "car", confidence: 0.5},
		{label: "person", confidence: 0.99},
		{label: "car", confidence: 0.6},
	})

	// state keeps model output order, duplicates included
	if payload.State != "car, person, car" {
		t.Errorf("got state %q, want car, person, car", payload.State)
	}
	if payload.Count != len(payload.Detections) {
		t.Errorf("count %d does not match detections length %d", payload.Count, len(payload.Detections))
	}
}

func TestBuildPayloadRoundsConfidence(t *testing.T) {
	payload := buildPayload([]detection{{label: "dog", confidence: 0.8765}})
	if got := payload.Detections[0].Confidence; got != 0.88 {
		t.Errorf("got confidence %v, want 0.88", got)
	}
}

func TestDiscoveryMessages(t *testing.T) {
	cam := CameraConfig{Name: "yard", URL: "rtsp://10.0.0.5:554/stream1", Topic: "objectdetection/yard"}
	msgs := discoveryMessages(cam)

	if len(msgs) != 3 {
		t.Fatalf("got %d discovery messages, want 3", len(msgs))
	}

	wantTopics := []string{
		"homeassistant/sensor/yard/config",
		"homeassistant/sensor/yard_count/config",
		"homeassistant/binary_sensor/yard/config",
	}
	wantUniqueIDs := []string{"yard_detections", "yard_count", "yard_motion"}

	for i, msg := range msgs {
		if msg.Topic != wantTopics[i] {
			t.Errorf("got topic %q, want %q", msg.Topic, wantTopics[i])
		}
		if msg.Config.UniqueID != wantUniqueIDs[i] {
			t.Errorf("got unique id %q, want %q", msg.Config.UniqueID, wantUniqueIDs[i])
		}
		if msg.Config.StateTopic != cam.Topic {
			t.Errorf("got state topic %q, want %q", msg.Config.StateTopic, cam.Topic)
		}
		if msg.Config.JSONAttributesTopic != cam.Topic {
			t.Errorf("got attributes topic %q, want %q", msg.Config.JSONAttributesTopic, cam.Topic)
		}
		if !reflect.DeepEqual(msg.Config.Device, msgs[0].Config.Device) {
			t.Errorf("device block differs between discovery configs")
		}
	}

	if got := msgs[2].Config.DeviceClass; got != "motion" {
		t.Errorf("got device class %q, want motion", got)
	}
}

func TestDiscoveryMessagesIdempotent(t *testing.T) {
	cam := CameraConfig{Name: "porch", URL: "rtsp://10.0.0.6:554/stream1", Topic: "cameras/porch"}

	first := discoveryMessages(cam)
	second := discoveryMessages(cam)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("discovery messages are not deterministic")
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Fatal("discovery payloads differ between publishes")
	}
}
