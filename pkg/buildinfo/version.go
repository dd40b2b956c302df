// Package buildinfo carries version information injected at build time:
//
//	go build -ldflags "-X github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/congratulator
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies outgoing HTTP requests.
func UserAgent() string {
	return "congratulator/" + Version
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
