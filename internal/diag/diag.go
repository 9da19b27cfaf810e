// Package diag logs a one-line host/process summary at startup. It is
// purely informational: nothing in the request pipeline reads it back.
package diag

import (
	"runtime"
	"time"

	"github.com/elastic/go-sysinfo"
	"github.com/sirupsen/logrus"
)

// LogHostInfo writes a single Info-level line describing the host the
// proxy is running on. A failure to gather host info is logged as a
// warning and otherwise ignored — it must never prevent the proxy from
// starting.
func LogHostInfo(log logrus.FieldLogger) {
	host, err := sysinfo.Host()
	if err != nil {
		log.WithError(err).Warn("unable to gather host info")
		return
	}

	info := host.Info()
	fields := logrus.Fields{
		"arch":     info.Architecture,
		"hostname": info.Hostname,
		"uptime":   time.Since(info.BootTime).String(),
		"go_procs": runtime.NumCPU(),
	}
	if info.OS != nil {
		fields["os"] = info.OS.Name
	}
	log.WithFields(fields).Info("host info")
}
