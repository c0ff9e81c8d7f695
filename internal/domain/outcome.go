package domain

import "fmt"

type OutcomeKind string

const (
	OutcomeSuccess          OutcomeKind = "success"
	OutcomeBackendFailure   OutcomeKind = "backend_failure"
	OutcomeMalformedCommand OutcomeKind = "malformed_command"
	OutcomeUnknownCommand   OutcomeKind = "unknown_command"
)

// DefaultLaunchAppMessage is spoken when the host should open the app instead.
const DefaultLaunchAppMessage = "Bitte starte die Homematic App"

// Outcome is the single result of handling one VoiceCommand.
type Outcome struct {
	Kind    OutcomeKind
	Message string
	Err     error
}

func Success(req ToggleRequest) Outcome {
	return Outcome{
		Kind:    OutcomeSuccess,
		Message: fmt.Sprintf("Ich habe %s %s %s geschaltet", req.Pref, req.Switch, req.State),
	}
}

func BackendFailure(req ToggleRequest, err error) Outcome {
	return Outcome{
		Kind:    OutcomeBackendFailure,
		Message: fmt.Sprintf("Ich konnte %s %s nicht %s schalten", req.Pref, req.Switch, req.State),
		Err:     err,
	}
}

func MalformedCommand(err error) Outcome {
	return Outcome{Kind: OutcomeMalformedCommand, Err: err}
}

func UnknownCommand(name string) Outcome {
	return Outcome{Kind: OutcomeUnknownCommand, Err: fmt.Errorf("unknown command: %s", name)}
}

// LaunchApp reports whether the host should bring the app to the foreground.
func (o Outcome) LaunchApp() bool {
	return o.Kind == OutcomeMalformedCommand || o.Kind == OutcomeUnknownCommand
}

// Response is what the host shows and speaks.
type Response struct {
	Outcome        OutcomeKind `json:"outcome"`
	DisplayMessage string      `json:"display_message"`
	SpokenMessage  string      `json:"spoken_message"`
	LaunchApp      bool        `json:"launch_app"`
}

func (o Outcome) Render(launchAppMessage string) Response {
	if launchAppMessage == "" {
		launchAppMessage = DefaultLaunchAppMessage
	}

	resp := Response{
		Outcome:   o.Kind,
		LaunchApp: o.LaunchApp(),
	}

	if resp.LaunchApp {
		resp.SpokenMessage = launchAppMessage
		return resp
	}

	resp.DisplayMessage = o.Message
	resp.SpokenMessage = o.Message
	return resp
}
