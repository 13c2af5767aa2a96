package cli

// Version is overridden at build time with -ldflags "-X .../pkg/cli.Version=x.y.z".
var Version = "0.1.0"
