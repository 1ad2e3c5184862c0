// Package events defines the pipeline event type emitted by ephemeral agents
// and the broadcaster that fans those events out to live observers.
//
// Every step an agent takes during its lifecycle (spawn, tool call, result
// processing, destruction) is represented as a ProgressEvent. Events are
// appended to the agent's audit trail in the lifecycle registry and pushed
// to the Broadcaster, in that order, so no observer ever sees an event the
// registry history does not also have.
//
// Delivery is best effort: an observer that subscribes after an event was
// broadcast never receives it, and an observer whose Accept returns an error
// is dropped from the subscriber set without affecting delivery to others.
package events
