package version

// Version is set at build time with -ldflags "-X qsearch/internal/version.Version=..."
var Version = "dev"
