package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"homematic-voice/internal/domain"
)

type Dispatcher struct {
	iot      SwitchController
	registry DeviceRegistry
	notifier Notifier
	logger   *slog.Logger
}

func NewDispatcher(
	iot SwitchController,
	registry DeviceRegistry,
	notifier Notifier,
	logger *slog.Logger,
) *Dispatcher {
	if notifier == nil {
		notifier = &NoopNotifier{}
	}
	return &Dispatcher{
		iot:      iot,
		registry: registry,
		notifier: notifier,
		logger:   logger,
	}
}

// Handle produces exactly one Outcome for cmd. The only error it returns is
// the context's, in which case no outcome was produced.
func (d *Dispatcher) Handle(ctx context.Context, cmd domain.VoiceCommand) (domain.Outcome, error) {
	logger := d.logger.With("invocation", uuid.NewString(), "command", cmd.Name)

	var outcome domain.Outcome
	switch cmd.Name {
	case domain.CommandToggleSwitch:
		var err error
		outcome, err = d.toggleSwitch(ctx, logger, cmd)
		if err != nil {
			logger.Info("invocation cancelled", "error", err)
			return domain.Outcome{}, err
		}
	default:
		outcome = domain.UnknownCommand(cmd.Name)
	}

	switch outcome.Kind {
	case domain.OutcomeSuccess:
		logger.Info("command handled", "outcome", outcome.Kind, "message", outcome.Message)
	case domain.OutcomeBackendFailure:
		logger.Error("command failed", "outcome", outcome.Kind, "error", outcome.Err)
	default:
		logger.Warn("command not handled, falling back to app launch", "outcome", outcome.Kind, "error", outcome.Err)
	}

	if outcome.Message != "" {
		if err := d.notifier.Notify(ctx, outcome); err != nil {
			logger.Error("notifying outcome", "error", err)
		}
	}

	return outcome, nil
}

func (d *Dispatcher) toggleSwitch(ctx context.Context, logger *slog.Logger, cmd domain.VoiceCommand) (domain.Outcome, error) {
	req, err := domain.NewToggleRequest(cmd)
	if err != nil {
		return domain.MalformedCommand(err), nil
	}

	device, ok := d.registry.Resolve(req.Pref, req.Switch)
	if !ok {
		return domain.MalformedCommand(fmt.Errorf("%w: %s %s", domain.ErrUnknownDevice, req.Pref, req.Switch)), nil
	}

	logger.Debug("setting state",
		"ise_id", device.ISEID,
		"device", device.Name,
		"state", req.State,
		"on", req.On(),
	)

	err = d.iot.SetState(ctx, device.ISEID, req.On())
	if ctx.Err() != nil {
		return domain.Outcome{}, ctx.Err()
	}
	if err != nil {
		return domain.BackendFailure(req, err), nil
	}

	return domain.Success(req), nil
}
