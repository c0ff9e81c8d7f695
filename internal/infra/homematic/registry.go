package homematic

import (
	"fmt"
	"log/slog"
	"strings"

	"homematic-voice/internal/domain"
)

// Registry is a static routing table from spoken (pref, switch) pairs to CCU
// datapoints. It is read-only after construction.
type Registry struct {
	devices []domain.Device
	index   map[string]domain.Device
}

func NewRegistry(devices []domain.Device, logger *slog.Logger) (*Registry, error) {
	r := &Registry{
		devices: make([]domain.Device, 0, len(devices)),
		index:   make(map[string]domain.Device, len(devices)),
	}

	for i, d := range devices {
		if strings.TrimSpace(d.Pref) == "" || strings.TrimSpace(d.Switch) == "" {
			return nil, fmt.Errorf("device %d: pref and switch are required", i)
		}
		if strings.TrimSpace(d.ISEID) == "" {
			return nil, fmt.Errorf("device %d (%s %s): ise_id is required", i, d.Pref, d.Switch)
		}

		k := key(d.Pref, d.Switch)
		if _, dup := r.index[k]; dup {
			return nil, fmt.Errorf("device %d: duplicate entry for %s %s", i, d.Pref, d.Switch)
		}

		if d.Name == "" {
			d.Name = d.Pref + " " + d.Switch
		}

		r.devices = append(r.devices, d)
		r.index[k] = d
	}

	logger.Info("device registry loaded", "devices", len(r.devices))

	return r, nil
}

func (r *Registry) Resolve(pref, switchName string) (domain.Device, bool) {
	d, ok := r.index[key(pref, switchName)]
	return d, ok
}

func (r *Registry) Devices() []domain.Device {
	result := make([]domain.Device, len(r.devices))
	copy(result, r.devices)
	return result
}

func key(pref, switchName string) string {
	return strings.ToLower(strings.TrimSpace(pref)) + "\x00" + strings.ToLower(strings.TrimSpace(switchName))
}
