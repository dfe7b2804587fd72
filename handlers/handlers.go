package handlers

import (
	"yumigo/followgraph"
	"yumigo/gateway"
)

// Package-level wiring, set once from main before routes are mounted.
var (
	// Gateway is the MySQL/Redis persistence store shared by all
	// handlers.
	Gateway *gateway.Store

	// Registry hands out the per-user follow-graph session stores.
	Registry *followgraph.Registry

	// Notifier stores a notification and pushes it live.
	Notifier gateway.NotificationSink
)

func Init(gw *gateway.Store, registry *followgraph.Registry, notifier gateway.NotificationSink) {
	Gateway = gw
	Registry = registry
	Notifier = notifier
}
