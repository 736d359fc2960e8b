// Command leadflow runs the handoff and qualification orchestrator: an HTTP
// service that receives CRM webhook messages, runs the per-contact pipeline,
// and serves health and Prometheus metrics endpoints.
package main
