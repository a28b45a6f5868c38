package instance

import (
	"os"

	"github.com/hijabina/hijabina-backend/pkg/env"
)

// ID names the running process in logs. HIJABINA_INSTANCE_ID wins over the
// platform's DYNO; "local" is the fallback.
func ID() string {
	if id := env.Get("INSTANCE_ID", ""); id != "" {
		return id
	}
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	return "local"
}
