package api

import (
	"encoding/json"
	"net/http"
	"runtime"
)

type versionResponse struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// VersionHandler returns build metadata. Values are injected via ldflags at
// build time; missing values fall back to dev/unknown.
func VersionHandler(version, gitCommit, buildDate string) http.Handler {
	if version == "" {
		version = "dev"
	}
	if gitCommit == "" {
		gitCommit = "unknown"
	}
	if buildDate == "" {
		buildDate = "unknown"
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		response := versionResponse{
			Version:   version,
			GitCommit: gitCommit,
			BuildDate: buildDate,
			GoVersion: runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	})
}
