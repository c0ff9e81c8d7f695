package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"homematic-voice/internal/application"
	"homematic-voice/internal/domain"
)

type setStateCall struct {
	iseID string
	on    bool
}

type mockSwitchController struct {
	err    error
	calls  []setStateCall
	before func()
}

func (m *mockSwitchController) SetState(_ context.Context, iseID string, on bool) error {
	if m.before != nil {
		m.before()
	}
	m.calls = append(m.calls, setStateCall{iseID: iseID, on: on})
	return m.err
}

type mockRegistry struct {
	devices []domain.Device
}

func (m *mockRegistry) Devices() []domain.Device { return m.devices }

func (m *mockRegistry) Resolve(pref, switchName string) (domain.Device, bool) {
	for _, d := range m.devices {
		if d.Pref == pref && d.Switch == switchName {
			return d, true
		}
	}
	return domain.Device{}, false
}

type mockNotifier struct {
	messages []string
	kinds    []domain.OutcomeKind
}

func (m *mockNotifier) Notify(_ context.Context, outcome domain.Outcome) error {
	m.messages = append(m.messages, outcome.Message)
	m.kinds = append(m.kinds, outcome.Kind)
	return nil
}

func newDispatcher(controller *mockSwitchController, notifier application.Notifier) *application.Dispatcher {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := &mockRegistry{
		devices: []domain.Device{
			{Pref: "Wohnzimmer", Switch: "Lampe", ISEID: "1643", Name: "Stehlampe"},
		},
	}
	return application.NewDispatcher(controller, registry, notifier, logger)
}

func toggleCommand(pref, switchName, state string) domain.VoiceCommand {
	return domain.VoiceCommand{
		Name: domain.CommandToggleSwitch,
		Slots: map[string][]string{
			"pref":   {pref},
			"switch": {switchName},
			"state":  {state},
		},
	}
}

func TestDispatcher_ToggleSuccess(t *testing.T) {
	controller := &mockSwitchController{}
	notifier := &mockNotifier{}
	dispatcher := newDispatcher(controller, notifier)

	outcome, err := dispatcher.Handle(context.Background(), toggleCommand("Wohnzimmer", "Lampe", "ein"))
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	if outcome.Kind != domain.OutcomeSuccess {
		t.Fatalf("outcome: got %s, want success", outcome.Kind)
	}

	if outcome.Message != "Ich habe Wohnzimmer Lampe ein geschaltet" {
		t.Errorf("message: got %q", outcome.Message)
	}

	if len(controller.calls) != 1 {
		t.Fatalf("backend calls: got %d, want 1", len(controller.calls))
	}

	if controller.calls[0] != (setStateCall{iseID: "1643", on: true}) {
		t.Errorf("backend call: got %+v", controller.calls[0])
	}

	if len(notifier.messages) != 1 || notifier.messages[0] != outcome.Message {
		t.Errorf("notifications: got %v", notifier.messages)
	}
}

func TestDispatcher_StateNormalization(t *testing.T) {
	tests := []struct {
		state  string
		wantOn bool
	}{
		{"ein", true},
		{"on", true},
		{"aus", false},
		{"ON", false},
		{"irgendwas", false},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			controller := &mockSwitchController{}
			dispatcher := newDispatcher(controller, nil)

			outcome, err := dispatcher.Handle(context.Background(), toggleCommand("Wohnzimmer", "Lampe", tt.state))
			if err != nil {
				t.Fatalf("Handle error: %v", err)
			}

			if len(controller.calls) != 1 || controller.calls[0].on != tt.wantOn {
				t.Errorf("backend calls: got %+v, want on=%t", controller.calls, tt.wantOn)
			}

			if !strings.Contains(outcome.Message, " "+tt.state+" ") {
				t.Errorf("message should carry state verbatim: got %q", outcome.Message)
			}
		})
	}
}

func TestDispatcher_BackendFailure(t *testing.T) {
	controller := &mockSwitchController{err: errors.New("status 500")}
	notifier := &mockNotifier{}
	dispatcher := newDispatcher(controller, notifier)

	outcome, err := dispatcher.Handle(context.Background(), toggleCommand("Wohnzimmer", "Lampe", "ein"))
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	if outcome.Kind != domain.OutcomeBackendFailure {
		t.Fatalf("outcome: got %s, want backend_failure", outcome.Kind)
	}

	if outcome.Message != "Ich konnte Wohnzimmer Lampe nicht ein schalten" {
		t.Errorf("message: got %q", outcome.Message)
	}

	if len(controller.calls) != 1 {
		t.Errorf("backend calls: got %d, want 1", len(controller.calls))
	}

	if len(notifier.kinds) != 1 || notifier.kinds[0] != domain.OutcomeBackendFailure {
		t.Errorf("notifications: got %v, want one backend_failure", notifier.kinds)
	}
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	controller := &mockSwitchController{}
	notifier := &mockNotifier{}
	dispatcher := newDispatcher(controller, notifier)

	outcome, err := dispatcher.Handle(context.Background(), domain.VoiceCommand{Name: "brewCoffee", Slots: map[string][]string{}})
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	if outcome.Kind != domain.OutcomeUnknownCommand {
		t.Errorf("outcome: got %s, want unknown_command", outcome.Kind)
	}

	if !outcome.LaunchApp() {
		t.Error("unknown command should launch the app")
	}

	if len(controller.calls) != 0 {
		t.Errorf("backend calls: got %d, want 0", len(controller.calls))
	}

	if len(notifier.messages) != 0 {
		t.Errorf("notifications: got %v, want none", notifier.messages)
	}
}

func TestDispatcher_MalformedCommand(t *testing.T) {
	controller := &mockSwitchController{}
	dispatcher := newDispatcher(controller, nil)

	cmd := domain.VoiceCommand{
		Name:  domain.CommandToggleSwitch,
		Slots: map[string][]string{"pref": {"x"}, "switch": {"y"}},
	}

	outcome, err := dispatcher.Handle(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	if outcome.Kind != domain.OutcomeMalformedCommand {
		t.Fatalf("outcome: got %s, want malformed_command", outcome.Kind)
	}

	if !errors.Is(outcome.Err, domain.ErrMissingSlot) {
		t.Errorf("error: got %v, want ErrMissingSlot", outcome.Err)
	}

	if len(controller.calls) != 0 {
		t.Errorf("backend calls: got %d, want 0", len(controller.calls))
	}
}

func TestDispatcher_UnknownDevice(t *testing.T) {
	controller := &mockSwitchController{}
	dispatcher := newDispatcher(controller, nil)

	outcome, err := dispatcher.Handle(context.Background(), toggleCommand("Keller", "Pumpe", "ein"))
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	if outcome.Kind != domain.OutcomeMalformedCommand {
		t.Fatalf("outcome: got %s, want malformed_command", outcome.Kind)
	}

	if !errors.Is(outcome.Err, domain.ErrUnknownDevice) {
		t.Errorf("error: got %v, want ErrUnknownDevice", outcome.Err)
	}

	if len(controller.calls) != 0 {
		t.Errorf("backend calls: got %d, want 0", len(controller.calls))
	}
}

func TestDispatcher_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	controller := &mockSwitchController{
		err:    context.Canceled,
		before: cancel,
	}
	notifier := &mockNotifier{}
	dispatcher := newDispatcher(controller, notifier)

	outcome, err := dispatcher.Handle(ctx, toggleCommand("Wohnzimmer", "Lampe", "ein"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error: got %v, want context.Canceled", err)
	}

	if outcome.Kind != "" {
		t.Errorf("outcome: got %s, want none", outcome.Kind)
	}

	if len(notifier.messages) != 0 {
		t.Errorf("notifications: got %v, want none", notifier.messages)
	}
}
