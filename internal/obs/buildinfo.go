package obs

import (
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerBuildInfo sync.Once

	buildInfoGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "staffdesk",
		Name:      "build_info",
		Help:      "Version, VCS revision and Go runtime of the running binary.",
	}, []string{"version", "revision", "goversion"})
)

// InitBuildInfo publishes staffdesk_build_info. An empty or "dev" commit is
// replaced by the vcs.revision stamped into the binary, when present.
func InitBuildInfo(version, commit string) {
	registerBuildInfo.Do(func() { prometheus.MustRegister(buildInfoGauge) })
	buildInfoGauge.Reset()
	buildInfoGauge.WithLabelValues(version, revision(commit), runtime.Version()).Set(1)
}

func revision(commit string) string {
	if commit != "" && commit != "dev" {
		return commit
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	if commit == "" {
		return "unknown"
	}
	return commit
}
