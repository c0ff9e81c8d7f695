package application

import (
	"context"

	"homematic-voice/internal/domain"
)

type SwitchController interface {
	SetState(ctx context.Context, iseID string, on bool) error
}

type DeviceRegistry interface {
	Resolve(pref, switchName string) (domain.Device, bool)
	Devices() []domain.Device
}
