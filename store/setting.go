package store

import "errors"

// ErrSettingNotFound is returned when a settings key has no stored value.
var ErrSettingNotFound = errors.New("setting not found")

// Setting is a keyed opaque value. Last write wins; no versioning.
type Setting struct {
	Key   string
	Value string
}

type FindSetting struct {
	Key string
}
