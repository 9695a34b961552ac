package chat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Action is what an inline button does. The set of actions is closed;
// callback data is decoded once at the gateway and then switched on by type.
type Action interface {
	action()
}

type CategorySelect struct {
	Index int
}

type PhotosDone struct{}

type AnonymityChoice struct {
	Anonymous bool
}

type ConfirmChoice struct {
	Confirm bool
}

type UnlinkChoice struct {
	Confirm bool
}

func (CategorySelect) action()  {}
func (PhotosDone) action()      {}
func (AnonymityChoice) action() {}
func (ConfirmChoice) action()   {}
func (UnlinkChoice) action()    {}

var ErrUnknownAction = errors.New("unknown button action")

const (
	prefixCategory  = "category"
	prefixPhotos    = "photos"
	prefixAnonymity = "anon"
	prefixConfirm   = "confirm"
	prefixUnlink    = "unlink"
)

// EncodeAction returns the callback data for a. Telegram caps callback data
// at 64 bytes; every encoding stays far below that.
func EncodeAction(a Action) string {
	switch a := a.(type) {
	case CategorySelect:
		return prefixCategory + ":" + strconv.Itoa(a.Index)
	case PhotosDone:
		return prefixPhotos + ":done"
	case AnonymityChoice:
		return prefixAnonymity + ":" + yesNo(a.Anonymous)
	case ConfirmChoice:
		return prefixConfirm + ":" + yesNo(a.Confirm)
	case UnlinkChoice:
		return prefixUnlink + ":" + yesNo(a.Confirm)
	default:
		panic(fmt.Sprintf("chat: unencodable action %T", a))
	}
}

// DecodeAction parses callback data produced by EncodeAction.
func DecodeAction(data string) (Action, error) {
	kind, value, ok := strings.Cut(data, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, data)
	}

	switch kind {
	case prefixCategory:
		i, err := strconv.Atoi(value)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAction, data)
		}
		return CategorySelect{Index: i}, nil
	case prefixPhotos:
		if value == "done" {
			return PhotosDone{}, nil
		}
	case prefixAnonymity:
		if b, ok := parseYesNo(value); ok {
			return AnonymityChoice{Anonymous: b}, nil
		}
	case prefixConfirm:
		if b, ok := parseYesNo(value); ok {
			return ConfirmChoice{Confirm: b}, nil
		}
	case prefixUnlink:
		if b, ok := parseYesNo(value); ok {
			return UnlinkChoice{Confirm: b}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, data)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func parseYesNo(s string) (bool, bool) {
	switch s {
	case "yes":
		return true, true
	case "no":
		return false, true
	}
	return false, false
}
