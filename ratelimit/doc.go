// Package ratelimit enforces the per-contact ceilings: outbound messages per
// rolling window and handoffs per rolling window. Windows are bounded ring
// buffers of timestamps evaluated synchronously at decision time; there are
// no timers. Hitting a ceiling degrades the turn (suppress the side effect)
// rather than erroring.
package ratelimit
