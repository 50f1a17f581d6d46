// Package report exposes read-only HTTP endpoints over a guard's
// collector and breaker: health verdict, metrics summary, breaker
// snapshot and build version. No handler mutates component state.
//
// It also hosts the HTTP edge error mapping: MapError translates
// resilience sentinels into AppErrors so handlers embedding guarded
// calls can respond with consistent error bodies.
package report
