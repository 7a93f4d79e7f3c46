// Package prereq defines the recoverable setup errors raised when a command
// is missing something it needs before it can run: an installed runtime, a
// publish config or an application manifest. The command dispatcher is the
// only place that inspects these errors and offers a remediation.
package prereq

import (
	"errors"
	"fmt"
)

// Kind identifies the missing prerequisite.
type Kind int

const (
	// NeedInstall means a runtime (optionally a specific version) must be installed.
	NeedInstall Kind = iota + 1
	// NeedPublishConfig means the publish config file is missing or unreadable.
	NeedPublishConfig
	// NeedManifest means the application manifest is missing or unreadable.
	NeedManifest
)

// String returns the kind's stable identifier.
func (k Kind) String() string {
	switch k {
	case NeedInstall:
		return "NEED_INSTALL"
	case NeedPublishConfig:
		return "NEED_PUBLISH_JSON"
	case NeedManifest:
		return "NEED_PACKAGE_JSON"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a recoverable setup error. Version is only meaningful for
// NeedInstall and is empty when any installed version would do.
type Error struct {
	Kind    Kind
	Version string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Version != "" {
		msg += " (version " + e.Version + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// Install returns a NeedInstall error for version.
func Install(version string) *Error {
	return &Error{Kind: NeedInstall, Version: version}
}

// PublishConfig returns a NeedPublishConfig error caused by err.
func PublishConfig(err error) *Error {
	return &Error{Kind: NeedPublishConfig, Err: err}
}

// Manifest returns a NeedManifest error caused by err.
func Manifest(err error) *Error {
	return &Error{Kind: NeedManifest, Err: err}
}

// As reports whether err wraps a prerequisite error and returns it.
func As(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
