// Package action names the behaviors a controller can ask the harness for.
package action

import (
	"errors"
	"fmt"
)

var ErrUnknownAction = errors.New("unknown action")

// Key is the extra under which controllers pass the action code.
const Key = "action"

type Action int

const (
	Unknown Action = iota
	EndImmediately
	SleepWhileTop
	LongSleepWhileTop
	ShowApplicationOverlay
	ShowNotification
	Crash
	CreateChannelGroup
	GenerateMobileTraffic
)

var codes = map[Action]string{
	EndImmediately:         "action.end_immediately",
	SleepWhileTop:          "action.sleep_top",
	LongSleepWhileTop:      "action.long_sleep_top",
	ShowApplicationOverlay: "action.show_application_overlay",
	ShowNotification:       "action.show_notification",
	Crash:                  "action.crash",
	CreateChannelGroup:     "action.create_channel_group",
	GenerateMobileTraffic:  "action.generate_mobile_traffic",
}

// All lists the known actions in declaration order.
func All() []Action {
	return []Action{
		EndImmediately,
		SleepWhileTop,
		LongSleepWhileTop,
		ShowApplicationOverlay,
		ShowNotification,
		Crash,
		CreateChannelGroup,
		GenerateMobileTraffic,
	}
}

// String returns the wire code of the action.
func (a Action) String() string {
	if c, ok := codes[a]; ok {
		return c
	}
	return "action.unknown"
}

func Parse(code string) (Action, error) {
	for a, c := range codes {
		if c == code {
			return a, nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownAction, code)
}
