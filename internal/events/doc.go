// Package events provides types and interfaces for an event-driven architecture.
//
// This package defines event types and handler interfaces that allow for loose coupling
// between components in the system. Services can emit events without knowing which
// handlers will process them, enabling better separation of concerns and reducing
// circular dependencies.
//
// Events here carry best-effort side effects only (notification email, offer
// fan-out); handler failures are logged and never roll back the emitting
// operation.
//
// The primary components are:
// - NotificationEvent: Represents a fact that side-effect handlers react to
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
