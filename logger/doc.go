// Package logger provides structured logging for apiclient using zerolog.
//
// A Logger satisfies apiclient.Logger, so it can be handed straight to
// apiclient.WithLogger to receive the per-request send/receive lines.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.NewDefault("apiclient").WithComponent("billing")
//	log.Info("fetched invoices", logger.Fields("count", 12))
package logger
