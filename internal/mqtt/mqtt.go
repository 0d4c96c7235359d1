package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"bikerental-server/internal/config"
	"bikerental-server/internal/modules/rental/types"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 5 * time.Second

var (
	ErrNotConnected = errors.New("mqtt client not connected")
	ErrStopped      = errors.New("mqtt publisher stopped")
)

// Publisher sends successful predictions to the configured topic
// (QoS 1, not retained).
type Publisher struct {
	client    mqtt.Client
	topic     string
	broker    string
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

// Event is the JSON payload of a published prediction.
type Event struct {
	Time         time.Time           `json:"time"`
	Model        string              `json:"model"`
	ModelVersion string              `json:"modelVersion"`
	Features     types.FeatureRecord `json:"features"`
	Prediction   float64             `json:"prediction"`
}

func NewPublisher(cfg config.Config, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Publisher{
		topic:  cfg.MQTTTopic,
		broker: fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort),
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(p.broker)
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		p.setConnected(true)
		logger.Info("mqtt connected", "broker", p.broker, "topic", p.topic)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = mqtt.NewClient(opts)
	return p
}

// Connect waits for the first broker connection, honoring ctx and Disconnect.
// Paho keeps retrying in the background after ctx ends.
func (p *Publisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return ErrStopped
	default:
	}
	if p.IsConnected() {
		return nil
	}

	token := p.client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt connect: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stopCh:
		return ErrStopped
	}
}

func (p *Publisher) Name() string { return "mqtt" }

// Record publishes one prediction event.
func (p *Publisher) Record(ctx context.Context, pred types.Prediction) error {
	return p.PublishPrediction(ctx, Event{
		Time:         pred.Time,
		Model:        pred.Model,
		ModelVersion: pred.ModelVersion,
		Features:     pred.Features,
		Prediction:   pred.Value,
	})
}

func (p *Publisher) PublishPrediction(ctx context.Context, ev Event) error {
	if !p.IsConnected() {
		return ErrNotConnected
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal prediction event: %w", err)
	}

	token := p.client.Publish(p.topic, 1, false, data)
	timer := time.NewTimer(publishTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("publish timeout for topic %s", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish prediction: %w", err)
	}

	p.logger.Debug("published prediction", "topic", p.topic, "prediction", ev.Prediction)
	return nil
}

func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Disconnect stops the publisher. Safe to call more than once.
func (p *Publisher) Disconnect() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	if p.client != nil {
		p.client.Disconnect(250)
	}
	p.setConnected(false)
	p.logger.Info("mqtt disconnected")
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}
