// Package env reads the few settings needed before config.Load runs, such as
// the log format used while the config itself is being parsed.
package env

import "os"

// Prefix namespaces every storefront variable.
const Prefix = "HIJABINA_"

// Get returns HIJABINA_<key>, then the bare key, then fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(Prefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
