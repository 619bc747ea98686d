package infra

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/skyvolt/fleetmon/config"
	"github.com/skyvolt/fleetmon/model"
	"github.com/skyvolt/fleetmon/pkg/logger"
)

// SnapshotPublisher pushes inverter snapshots to MQTT after ingestion.
// Publishing is fire-and-forget; a broker outage never fails a sync cycle.
type SnapshotPublisher struct {
	client      mqtt.Client
	topicPrefix string
	enabled     bool
	logger      zerolog.Logger
}

func NewSnapshotPublisher(conf config.MQTTConfig) (*SnapshotPublisher, error) {
	log := zerolog.New(logger.NewWriter("mqtt.log")).With().Timestamp().Caller().Logger()
	if !conf.Enabled {
		return &SnapshotPublisher{enabled: false, logger: log}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(conf.Broker).
		SetClientID(conf.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			log.Warn().Err(err).Msg("mqtt connection lost")
		})

	if conf.Username != "" {
		opts.SetUsername(conf.Username)
		opts.SetPassword(conf.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to mqtt broker: %w", token.Error())
	}

	return &SnapshotPublisher{
		client:      client,
		topicPrefix: conf.TopicPrefix,
		enabled:     true,
		logger:      log,
	}, nil
}

func (p *SnapshotPublisher) Publish(stationExternalID string, inverter *model.Inverter) {
	if !p.enabled {
		return
	}

	payload, err := json.Marshal(inverter)
	if err != nil {
		p.logger.Error().Err(err).Str("serial", inverter.SerialNumber).Msg("failed to marshal snapshot")
		return
	}

	topic := fmt.Sprintf("%s/%s/%s/snapshot", p.topicPrefix, stationExternalID, inverter.SerialNumber)
	p.client.Publish(topic, 0, true, payload)
}

func (p *SnapshotPublisher) Close() {
	if p.enabled {
		p.client.Disconnect(250)
	}
}
