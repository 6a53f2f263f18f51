// Package notifications delivers pipeline events via ntfy.
//
// The default implementation publishes to the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set, so
// pipeline code depends only on the Service interface.
package notifications
