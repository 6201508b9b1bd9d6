package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	discoveryPrefix = "homeassistant"
	connectTimeout  = 10 * time.Second
	publishTimeout  = 5 * time.Second
)

type statePublisher interface {
	PublishState(cam CameraConfig, payload detectionPayload) error
}

// mqttPublisher holds the single broker connection shared by all cameras.
type mqttPublisher struct {
	client mqtt.Client
}

func newPublisher(cfg MQTTConfig) (*mqttPublisher, error) {
	opts := mqtt.NewClientOptions().AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetAutoReconnect(true)
	if cfg.User != "" {
		opts.SetUsername(cfg.User)
		opts.SetPassword(cfg.Pass)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connecting to mqtt broker %s:%d timed out", cfg.Broker, cfg.Port)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s:%d: %w", cfg.Broker, cfg.Port, err)
	}

	log.Info().Msgf("Connected to MQTT broker at %s:%d", cfg.Broker, cfg.Port)
	return &mqttPublisher{client: client}, nil
}

func (p *mqttPublisher) Close() {
	p.client.Disconnect(250)
}

func (p *mqttPublisher) publish(topic string, retained bool, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", topic, err)
	}
	token := p.client.Publish(topic, 0, retained, body)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	return token.Error()
}

// PublishDiscovery announces the camera's entities to Home Assistant.
// The configs are retained, so republishing them on every start is safe.
func (p *mqttPublisher) PublishDiscovery(cam CameraConfig) error {
	for _, msg := range discoveryMessages(cam) {
		if err := p.publish(msg.Topic, true, msg.Config); err != nil {
			return fmt.Errorf("discovery config for %s: %w", cam.Name, err)
		}
		log.Info().Msgf("Published MQTT discovery config to %s", msg.Topic)
	}
	return nil
}

// PublishState sends the per cycle detection payload to the camera topic.
func (p *mqttPublisher) PublishState(cam CameraConfig, payload detectionPayload) error {
	if err := p.publish(cam.Topic, false, payload); err != nil {
		return fmt.Errorf("state payload for %s: %w", cam.Name, err)
	}
	return nil
}

type discoveryDevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name,omitempty"`
	Model        string   `json:"model,omitempty"`
	Manufacturer string   `json:"manufacturer,omitempty"`
}

type discoveryConfig struct {
	Name                string          `json:"name"`
	StateTopic          string          `json:"state_topic"`
	ValueTemplate       string          `json:"value_template"`
	UniqueID            string          `json:"unique_id"`
	DeviceClass         string          `json:"device_class,omitempty"`
	JSONAttributesTopic string          `json:"json_attributes_topic"`
	Device              discoveryDevice `json:"device"`
}

type discoveryMessage struct {
	Topic  string
	Config discoveryConfig
}

// discoveryMessages builds the retained Home Assistant discovery configs
// for one camera: a detections sensor, a detection count sensor and a
// motion binary sensor, all reading from the same state topic.
func discoveryMessages(cam CameraConfig) []discoveryMessage {
	device := discoveryDevice{
		Identifiers:  []string{"camwatch_" + cam.Name},
		Name:         "Object Detection Camera - " + cam.Name,
		Model:        "DNN Object Detection",
		Manufacturer: "camwatch",
	}

	return []discoveryMessage{
		{
			Topic: fmt.Sprintf("%s/sensor/%s/config", discoveryPrefix, cam.Name),
			Config: discoveryConfig{
				Name:                cam.Name + " Detections",
				StateTopic:          cam.Topic,
				ValueTemplate:       "{{ value_json.state }}",
				UniqueID:            cam.Name + "_detections",
				JSONAttributesTopic: cam.Topic,
				Device:              device,
			},
		},
		{
			Topic: fmt.Sprintf("%s/sensor/%s_count/config", discoveryPrefix, cam.Name),
			Config: discoveryConfig{
				Name:                cam.Name + " Detection Count",
				StateTopic:          cam.Topic,
				ValueTemplate:       "{{ value_json.count }}",
				UniqueID:            cam.Name + "_count",
				JSONAttributesTopic: cam.Topic,
				Device:              device,
			},
		},
		{
			Topic: fmt.Sprintf("%s/binary_sensor/%s/config", discoveryPrefix, cam.Name),
			Config: discoveryConfig{
				Name:                cam.Name + " Object Detected",
				StateTopic:          cam.Topic,
				ValueTemplate:       "{% if value_json.count > 0 %}ON{% else %}OFF{% endif %}",
				UniqueID:            cam.Name + "_motion",
				DeviceClass:         "motion",
				JSONAttributesTopic: cam.Topic,
				Device:              device,
			},
		},
	}
}

// buildPayload derives the state/attributes message from one cycle's
// detection results. Confidences are rounded to two decimals.
func buildPayload(detections []detection) detectionPayload {
	payload := detectionPayload{
		State:      "none",
		Detections: make([]payloadDetection, 0, len(detections)),
		Count:      len(detections),
	}

	labels := make([]string, 0, len(detections))
	for _, obj := range detections {
		labels = append(labels, obj.label)
		payload.Detections = append(payload.Detections, payloadDetection{
			Object:     obj.label,
			Confidence: math.Round(float64(obj.confidence)*100) / 100,
		})
	}
	if len(labels) > 0 {
		payload.State = strings.Join(labels, ", ")
	}
	return payload
}
