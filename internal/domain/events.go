package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// LifecycleEvent is a signal from the presentation surface that the participant may be leaving it.
type LifecycleEvent string

const (
	EventHidden       LifecycleEvent = "hidden"
	EventBlur         LifecycleEvent = "blur"
	EventContextMenu  LifecycleEvent = "contextmenu"
	EventCopy         LifecycleEvent = "copy"
	EventBeforeUnload LifecycleEvent = "beforeunload"
)

// ParseLifecycleEvent maps a wire name onto a known event.
func ParseLifecycleEvent(raw string) (LifecycleEvent, bool) {
	switch ev := LifecycleEvent(strings.ToLower(strings.TrimSpace(raw))); ev {
	case EventHidden, EventBlur, EventContextMenu, EventCopy, EventBeforeUnload:
		return ev, true
	}
	return "", false
}

// Directive tells the presentation surface how to treat the event that produced it.
type Directive struct {
	PreventDefault bool `json:"preventDefault"`
	ConfirmLeave   bool `json:"confirmLeave"`
}

// CommandKind enumerates participant input.
type CommandKind string

const (
	CommandSelect  CommandKind = "select"
	CommandNext    CommandKind = "next"
	CommandPrev    CommandKind = "prev"
	CommandSubmit  CommandKind = "submit"
	CommandConfirm CommandKind = "confirm"
	CommandCancel  CommandKind = "cancel"
	CommandRetry   CommandKind = "retry"
	CommandRefresh CommandKind = "refresh"
)

// Command is one piece of participant input. Option is only used by CommandSelect.
type Command struct {
	Kind   CommandKind `json:"kind"`
	Option int         `json:"option"`
}

// ParseCommand reads the short textual form used by the terminal:
// "n", "p", an option number ("2") or letter ("b"), "submit", "yes", "no", "retry", "refresh".
func ParseCommand(line string) (Command, error) {
	word := strings.ToLower(strings.TrimSpace(line))
	switch word {
	case "n", "next":
		return Command{Kind: CommandNext}, nil
	case "p", "prev", "previous":
		return Command{Kind: CommandPrev}, nil
	case "s", "submit":
		return Command{Kind: CommandSubmit}, nil
	case "y", "yes":
		return Command{Kind: CommandConfirm}, nil
	case "no":
		return Command{Kind: CommandCancel}, nil
	case "r", "retry":
		return Command{Kind: CommandRetry}, nil
	case "refresh":
		return Command{Kind: CommandRefresh}, nil
	}

	if n, err := strconv.Atoi(word); err == nil && n >= 1 {
		return Command{Kind: CommandSelect, Option: n - 1}, nil
	}
	if len(word) == 1 && word[0] >= 'a' && word[0] <= 'z' {
		return Command{Kind: CommandSelect, Option: int(word[0] - 'a')}, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
}
