package env

import "os"

// Prefix is the namespace applied to this service's environment variables.
const Prefix = "PLANTOPS_"

// Get returns the value of the given environment variable, preferring the
// PLANTOPS_-prefixed form, or a fallback when neither is set.
func Get(key, fallback string) string {
	if val := os.Getenv(Prefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
