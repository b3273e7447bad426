package application

import "expvar"

// Engagement counters exported on /api/debug/vars.
var (
	engagementActions    = expvar.NewMap("engagement_actions")
	notificationsCreated = expvar.NewMap("notifications_created")
)
