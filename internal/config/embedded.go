package config

// Values injected at build time via ldflags. The embedded key serves as a
// default and can be overridden by environment variables or config file.
//
// Build with:
//   go build -ldflags "-X 'github.com/slipstream/mona/internal/config.EmbeddedTVDBKey=xxx' \
//                      -X 'github.com/slipstream/mona/internal/config.Version=v1.2.3'"
var (
	EmbeddedTVDBKey string
	Version         = "dev"
)
