package alert

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/skyvolt/fleetmon/model"
	"github.com/skyvolt/fleetmon/pkg/logger"
	"github.com/skyvolt/fleetmon/repo"
	"github.com/skyvolt/fleetmon/setting"
	"go.openly.dev/pointy"
)

// Engine evaluates the fleet against the alert rules: stale telemetry,
// low battery state of charge, and device fault. It raises at most one
// active alert per (inverter, type) and resolves alerts whose condition
// has cleared.
type Engine struct {
	inverterRepo repo.InverterRepo
	alertRepo    repo.AlertRepo
	logger       zerolog.Logger
}

func NewEngine(inverterRepo repo.InverterRepo, alertRepo repo.AlertRepo) *Engine {
	return &Engine{
		inverterRepo: inverterRepo,
		alertRepo:    alertRepo,
		logger:       zerolog.New(logger.NewWriter("alert_engine.log")).With().Timestamp().Caller().Logger(),
	}
}

// Run evaluates every inverter. One failing inverter does not stop the rest.
func (e *Engine) Run() error {
	now := time.Now()

	inverters, err := e.inverterRepo.FindAll()
	if err != nil {
		e.logger.Error().Err(err).Msg("Engine::Run() - failed to list inverters")
		return err
	}

	for i := range inverters {
		if err := e.EvaluateInverter(&inverters[i], now); err != nil {
			e.logger.Error().Err(err).
				Int64("inverter_id", inverters[i].ID).
				Msg("Engine::Run() - evaluation failed")
		}
	}

	return nil
}

func (e *Engine) EvaluateInverter(inverter *model.Inverter, now time.Time) error {
	if err := e.evaluateOffline(inverter, now); err != nil {
		return err
	}
	if err := e.evaluateLowBattery(inverter, now); err != nil {
		return err
	}
	return e.evaluateFault(inverter, now)
}

// evaluateOffline flags inverters whose telemetry has gone stale. Only an
// inverter last seen online or standby transitions to offline; one already
// offline keeps its existing active alert.
func (e *Engine) evaluateOffline(inverter *model.Inverter, now time.Time) error {
	stale := inverter.LastDataTime == nil || now.Sub(*inverter.LastDataTime) > setting.OfflineThreshold

	if !stale {
		return e.resolveIfActive(inverter.ID, model.AlertTypeOffline, "data flow restored", now)
	}

	if inverter.Status != model.StatusOnline && inverter.Status != model.StatusStandby {
		return nil
	}

	inverter.Status = model.StatusOffline
	if err := e.inverterRepo.Save(inverter); err != nil {
		return err
	}

	description := "no telemetry received yet"
	if inverter.LastDataTime != nil {
		description = fmt.Sprintf("no telemetry since %s", inverter.LastDataTime.Format(time.RFC3339))
	}

	return e.raise(inverter, model.AlertTypeOffline,
		fmt.Sprintf("Inverter %s offline", inverter.SerialNumber), description, now)
}

func (e *Engine) evaluateLowBattery(inverter *model.Inverter, now time.Time) error {
	if inverter.BatterySocPercent == nil {
		return nil
	}

	soc := pointy.Float64Value(inverter.BatterySocPercent, 0)
	if soc >= setting.LowBatterySocPercent {
		return e.resolveIfActive(inverter.ID, model.AlertTypeLowBattery, "state of charge recovered", now)
	}

	return e.raise(inverter, model.AlertTypeLowBattery,
		fmt.Sprintf("Inverter %s battery low", inverter.SerialNumber),
		fmt.Sprintf("state of charge at %.1f%%", soc), now)
}

func (e *Engine) evaluateFault(inverter *model.Inverter, now time.Time) error {
	if inverter.Status != model.StatusFault {
		return e.resolveIfActive(inverter.ID, model.AlertTypeFault, "fault cleared", now)
	}

	return e.raise(inverter, model.AlertTypeFault,
		fmt.Sprintf("Inverter %s fault", inverter.SerialNumber),
		"device reported fault state", now)
}

func (e *Engine) raise(inverter *model.Inverter, alertType, title, description string, now time.Time) error {
	existing, err := e.alertRepo.FindActiveForInverter(inverter.ID, alertType)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	alert := &model.Alert{
		StationID:   pointy.Int64(inverter.StationID),
		InverterID:  pointy.Int64(inverter.ID),
		Type:        alertType,
		Title:       title,
		Description: description,
		OccurredAt:  now,
	}
	if err := e.alertRepo.Create(alert); err != nil {
		return err
	}

	e.logger.Info().
		Int64("inverter_id", inverter.ID).
		Str("type", alertType).
		Msg("Engine::raise() - alert created")
	return nil
}

func (e *Engine) resolveIfActive(inverterID int64, alertType, notes string, now time.Time) error {
	existing, err := e.alertRepo.FindActiveForInverter(inverterID, alertType)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	if err := e.alertRepo.Resolve(existing.ID, notes, now); err != nil {
		return err
	}

	e.logger.Info().
		Int64("alert_id", existing.ID).
		Str("type", alertType).
		Msg("Engine::resolveIfActive() - alert auto-resolved")
	return nil
}
