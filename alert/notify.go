package alert

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/skyvolt/fleetmon/infra"
	"github.com/skyvolt/fleetmon/model"
	"github.com/skyvolt/fleetmon/pkg/logger"
	"github.com/skyvolt/fleetmon/repo"
)

// Dispatcher delivers one outbound notification. Satisfied by
// infra.SnmpDispatcher.
type Dispatcher interface {
	Dispatch(notification infra.AlertNotification)
}

// Notifier sweeps active alerts that have not been notified yet and hands
// each to the dispatcher once. The notification_sent flag on the alert row
// is the only guard against re-sending.
type Notifier struct {
	alertRepo    repo.AlertRepo
	stationRepo  repo.StationRepo
	inverterRepo repo.InverterRepo
	dispatcher   Dispatcher
	logger       zerolog.Logger
}

func NewNotifier(
	alertRepo repo.AlertRepo,
	stationRepo repo.StationRepo,
	inverterRepo repo.InverterRepo,
	dispatcher Dispatcher,
) *Notifier {
	return &Notifier{
		alertRepo:    alertRepo,
		stationRepo:  stationRepo,
		inverterRepo: inverterRepo,
		dispatcher:   dispatcher,
		logger:       zerolog.New(logger.NewWriter("alert_notifier.log")).With().Timestamp().Caller().Logger(),
	}
}

func (n *Notifier) Run() error {
	alerts, err := n.alertRepo.FindUnsentActive()
	if err != nil {
		n.logger.Error().Err(err).Msg("Notifier::Run() - failed to list unsent alerts")
		return err
	}

	for i := range alerts {
		alert := &alerts[i]
		n.dispatcher.Dispatch(n.buildNotification(alert))

		if err := n.alertRepo.MarkNotified(alert.ID, time.Now()); err != nil {
			n.logger.Error().Err(err).Int64("alert_id", alert.ID).Msg("Notifier::Run() - failed to mark alert notified")
		}
	}

	if len(alerts) > 0 {
		n.logger.Info().Int("count", len(alerts)).Msg("Notifier::Run() - notifications dispatched")
	}

	return nil
}

func (n *Notifier) buildNotification(alert *model.Alert) infra.AlertNotification {
	notification := infra.AlertNotification{
		AlertTitle:    alert.Title,
		AlertSeverity: alert.Severity,
		AlertType:     alert.Type,
		Description:   alert.Description,
		OccurredAt:    alert.OccurredAt,
	}

	if alert.StationID != nil {
		if station, err := n.stationRepo.FindOne(*alert.StationID); err == nil {
			notification.StationName = station.Name
		}
	}

	if alert.InverterID != nil {
		if inverter, err := n.inverterRepo.FindOne(*alert.InverterID); err == nil {
			notification.InverterSerial = inverter.SerialNumber
		}
	}

	return notification
}
