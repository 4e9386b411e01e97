// Package host is a small application-server runtime that plugins attach to.
//
// A Runtime owns the metric registry, a pool of request workers serving an
// HTTP application, an ordered list of route rules and, in master mode, a
// master loop that ticks every plugin once per cycle. Plugins see the
// runtime only through the Host interface.
//
// Lifecycle:
//
//	rt := host.New(cfg, host.WithLogger(log))
//	rt.Load(plugins...)   // Plugin.OnLoad, routers registered here
//	rt.Start(ctx)         // routes resolved, app bound, Plugin.PostInit, loops started
//	rt.Stop()             // loops stopped, Plugin.Shutdown in reverse order
//
// Route rules use the form "REGEX HANDLER:ARGS", for example
//
//	^/metrics$ prometheus-metrics:
//
// The first rule whose regular expression matches the request path wins.
// Unmatched requests go to the application handler.
package host
