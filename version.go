package gantry

// Version is the release version of the Gantry engine.
// Overridden at build time via -ldflags "-X github.com/aretw0/gantry.Version=...".
var Version = "0.3.0"
