package infra

import (
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/rs/zerolog"
	"github.com/skyvolt/fleetmon/config"
	"github.com/skyvolt/fleetmon/pkg/logger"
)

const (
	TrapSeverityCritical = "6"
	TrapSeverityMajor    = "5"
	TrapSeverityMinor    = "4"
	TrapSeverityWarning  = "3"
	TrapSeverityClear    = "0"
)

// AlertNotification is the outbound payload handed to the dispatcher, one
// call per unsent active alert.
type AlertNotification struct {
	AlertTitle     string
	AlertSeverity  string
	AlertType      string
	StationName    string
	InverterSerial string
	Description    string
	OccurredAt     time.Time
}

// SnmpDispatcher fans one alert notification out to every configured trap
// receiver. Delivery failures are logged, not surfaced; the exactly-once
// guard lives on the alert row, not here.
type SnmpDispatcher struct {
	clients []*SnmpClient
	logger  *zerolog.Logger
}

func NewSnmpDispatcher(snmpList []config.SnmpConfig) (*SnmpDispatcher, error) {
	logger := zerolog.New(logger.NewWriter("snmp.log")).With().Timestamp().Caller().Logger()

	clients := make([]*SnmpClient, 0, len(snmpList))
	for _, c := range snmpList {
		client, err := NewSnmpClient(c)
		if err != nil {
			return nil, err
		}

		clients = append(clients, client)
	}

	return &SnmpDispatcher{clients: clients, logger: &logger}, nil
}

func (s *SnmpDispatcher) Dispatch(notification AlertNotification) {
	for _, client := range s.clients {
		if err := client.SendTrap(notification); err != nil {
			s.logger.Error().Err(err).
				Str("agent_host", client.agentHost).
				Str("target_host", client.client.Target).
				Int("target_port", int(client.client.Port)).
				Str("alert_title", notification.AlertTitle).
				Str("alert_type", notification.AlertType).
				Str("inverter_serial", notification.InverterSerial).
				Msg("failed to send trap")
		} else {
			s.logger.Info().
				Str("agent_host", client.agentHost).
				Str("target_host", client.client.Target).
				Int("target_port", int(client.client.Port)).
				Str("alert_title", notification.AlertTitle).
				Str("alert_type", notification.AlertType).
				Str("inverter_serial", notification.InverterSerial).
				Msg("send trap success")
		}
	}
}

// TrapSeverity maps an alert severity onto the receiver's severity scale.
func TrapSeverity(alertSeverity string) string {
	switch alertSeverity {
	case "error":
		return TrapSeverityMajor
	case "warning":
		return TrapSeverityWarning
	default:
		return TrapSeverityMinor
	}
}

type SnmpClient struct {
	agentHost string
	client    *gosnmp.GoSNMP
}

func NewSnmpClient(config config.SnmpConfig) (*SnmpClient, error) {
	client := &gosnmp.GoSNMP{
		Target:             config.TargetHost,
		Port:               uint16(config.TargetPort),
		Transport:          "udp",
		Community:          "public",
		Version:            gosnmp.Version1,
		Timeout:            300 * time.Second,
		Retries:            20,
		ExponentialTimeout: true,
		MaxOids:            gosnmp.MaxOids,
	}

	if err := client.Connect(); err != nil {
		return nil, err
	}

	return &SnmpClient{agentHost: config.AgentHost, client: client}, nil
}

func (c *SnmpClient) SendTrap(notification AlertNotification) error {
	variables := []gosnmp.SnmpPDU{
		{Name: "1.3.6.1.4.1.54622.2.1", Type: gosnmp.OctetString, Value: "FleetMonAlert"},
		{Name: "1.3.6.1.4.1.54622.2.2", Type: gosnmp.OctetString, Value: notification.StationName},
		{Name: "1.3.6.1.4.1.54622.2.3", Type: gosnmp.OctetString, Value: notification.InverterSerial},
		{Name: "1.3.6.1.4.1.54622.2.4", Type: gosnmp.OctetString, Value: notification.AlertTitle},
		{Name: "1.3.6.1.4.1.54622.2.5", Type: gosnmp.OctetString, Value: notification.AlertType},
		{Name: "1.3.6.1.4.1.54622.2.6", Type: gosnmp.OctetString, Value: notification.Description},
		{Name: "1.3.6.1.4.1.54622.2.7", Type: gosnmp.OctetString, Value: TrapSeverity(notification.AlertSeverity)},
		{Name: "1.3.6.1.4.1.54622.2.8", Type: gosnmp.OctetString, Value: notification.OccurredAt.Format(time.RFC3339)},
	}

	trap := gosnmp.SnmpTrap{
		Enterprise:   "1.3.6.1.4.1.54622.1.1",
		AgentAddress: c.agentHost,
		GenericTrap:  6,
		SpecificTrap: 1,
		Variables:    variables,
	}

	if _, err := c.client.SendTrap(trap); err != nil {
		return err
	}

	return nil
}
