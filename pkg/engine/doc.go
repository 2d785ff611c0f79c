// Package engine is the composition root of the relay. It loads the YAML
// configuration, builds one invoker per backend kind through a factory
// registry, and assembles the fallback sequencer, logger, and metrics that
// the HTTP server, MCP server, and terminal client share.
package engine
