package domain

import (
	"errors"
	"fmt"
	"strings"
)

const CommandToggleSwitch = "toggleSwitch"

const (
	SlotPref   = "pref"
	SlotSwitch = "switch"
	SlotState  = "state"
)

var (
	ErrMissingSlot   = errors.New("missing slot")
	ErrUnknownDevice = errors.New("unknown device")
)

// VoiceCommand is a command already parsed by the host voice platform.
type VoiceCommand struct {
	Name  string
	Slots map[string][]string
}

// Slot returns the first value of the named slot. Absent keys and empty
// lists report false.
func (c VoiceCommand) Slot(name string) (string, bool) {
	values, ok := c.Slots[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

type ToggleRequest struct {
	Pref   string
	Switch string
	State  string
}

func NewToggleRequest(cmd VoiceCommand) (ToggleRequest, error) {
	var req ToggleRequest

	for _, s := range []struct {
		name string
		dst  *string
	}{
		{SlotPref, &req.Pref},
		{SlotSwitch, &req.Switch},
		{SlotState, &req.State},
	} {
		value, ok := cmd.Slot(s.name)
		if !ok || strings.TrimSpace(value) == "" {
			return ToggleRequest{}, fmt.Errorf("%w: %s", ErrMissingSlot, s.name)
		}
		*s.dst = value
	}

	return req, nil
}

// On reports whether the state token asks for the switch to be turned on.
// Only the exact literals "ein" and "on" count.
func (r ToggleRequest) On() bool {
	return NormalizeState(r.State)
}

func NormalizeState(token string) bool {
	return token == "ein" || token == "on"
}
