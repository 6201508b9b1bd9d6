package main

import "testing"

func TestGetSourceKind(t *testing.T) {
	tests := []struct {
		url  string
		want sourceKind
	}{
		{"frame.jpg", IMAGE},
		{"snapshot.png", IMAGE},
		{"recording.mp4", VIDEO},
		{"0", VIDEO},
		{"rtsp://10.0.0.5:554/stream1", STREAM},
		{"rtsps://10.0.0.5:554/stream1", STREAM},
		{"http://example.com/stream", -1},
	}

	for _, tt := range tests {
		if got := getSourceKind(tt.url); got != tt.want {
			t.Errorf("getSourceKind(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestSourceKindString(t *testing.T) {
	if got := STREAM.String(); got != "STREAM" {
		t.Errorf("got %q, want STREAM", got)
	}
	if got := sourceKind(-1).String(); got != "sourceKind(-1)" {
		t.Errorf("got %q, want sourceKind(-1)", got)
	}
}
