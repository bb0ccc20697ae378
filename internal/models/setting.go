package models

import (
	"fmt"
	"strconv"
)

// SettingType is the tagged union discriminator for Setting.Value, modelling
// the source's dynamically-typed settings values as an explicit
// {String|Bool|Int} union with a conversion boundary.
type SettingType string

const (
	SettingString SettingType = "string"
	SettingBool   SettingType = "bool"
	SettingInt    SettingType = "int"
)

// Setting is a persisted key-value configuration row.
type Setting struct {
	Key         string
	Value       string
	Type        SettingType
	Description string
}

// TypedValue decodes Value according to Type, returning a string, bool, or
// int64 as appropriate.
func (s Setting) TypedValue() (any, error) {
	switch s.Type {
	case SettingString, "":
		return s.Value, nil
	case SettingBool:
		b, err := strconv.ParseBool(s.Value)
		if err != nil {
			return nil, fmt.Errorf("setting %q: invalid bool %q: %w", s.Key, s.Value, err)
		}
		return b, nil
	case SettingInt:
		i, err := strconv.ParseInt(s.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("setting %q: invalid int %q: %w", s.Key, s.Value, err)
		}
		return i, nil
	default:
		return nil, fmt.Errorf("setting %q: unknown type %q", s.Key, s.Type)
	}
}
