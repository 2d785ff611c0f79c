// Package tools exposes relay operations as tools.
//
// Sub-packages:
//   - [github.com/germanamz/taskify/pkg/tools/toolbox]: the Tool type and a named registry
//   - [github.com/germanamz/taskify/pkg/tools/mcpserver]: serves tools over MCP using the official Go SDK
package tools
