// Package events defines the range estimation events emitted on the event bus.
//
// Available event types:
//   - SampleEvent: a driving segment was accepted or rejected
//   - SoCEvent: the state of charge was updated
//   - EstimateEvent: a new range estimate was computed
package events
