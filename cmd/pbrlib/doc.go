// Package main hosts the pbrlib CLI entrypoint and command graph.
//
// The Cobra-based command tree runs imports, inspects the published read
// snapshot and the Mixcloud response cache, and scaffolds configuration. It
// centralizes configuration resolution and logging setup so subcommands can
// focus on output.
//
// Keep this package lean: add functionality to the internal packages first,
// then surface it here.
package main
