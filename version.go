package clevrprog

// Version is the release version reported by the CLI and the adapters.
var Version = "0.4.0"
