// Package services contains the core business logic: the chunked analysis
// pipeline, the rule-based classifier and the conversational responder.
// Services depend only on domain types and ports.
package services
