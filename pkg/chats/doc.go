// Package chats provides the provider-agnostic conversation model shared by
// the relay, its clients, and the prompt formatters.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/taskify/pkg/chats/role]: conversation roles (system, user, assistant)
//   - [github.com/germanamz/taskify/pkg/chats/message]: a single role-tagged conversation turn
//   - [github.com/germanamz/taskify/pkg/chats/chat]: ordered conversation container with recency windows and subchats
//
// No provider or API code is included; chats is a foundation layer
// that formatters and transports build on.
package chats
