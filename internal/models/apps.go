package models

import "time"

// LaunchFunc starts an application. It is owned by the registering
// application; the shell only invokes it.
type LaunchFunc func() error

// AppDescriptor describes a registered application. Descriptors are
// owned by the registry and are read-only to the shell.
type AppDescriptor struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Icon    string     `json:"icon"`
	Handler LaunchFunc `json:"-"`

	// Hidden marks system apps that never appear anywhere user-facing.
	Hidden bool `json:"hidden,omitempty"`

	// NoDesktop keeps an app out of the desktop icon grid while still
	// letting it be opened by ID. Fixed classification, not
	// user-configurable.
	NoDesktop bool `json:"noDesktop,omitempty"`
}

// AppInstance is a running instance of an application, returned by
// the registry when an app is opened.
type AppInstance struct {
	InstanceID string    `json:"instanceId"`
	AppID      string    `json:"appId"`
	StartedAt  time.Time `json:"startedAt"`
}
