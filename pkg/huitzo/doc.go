// Package huitzo is the SDK surface Intelligence Packs are written against.
//
// A pack exports huitzo.Command values whose handlers receive a Context with
// the platform services (storage, LLM, HTTP, email, Telegram, files, logging).
// Handlers never talk to the outside world directly: everything goes through
// the Context, so the same pack runs unchanged against the hosted platform,
// the local dev runtime, or the huitzotest mocks.
package huitzo
