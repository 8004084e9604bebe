//go:build windows

package config

// maps unix-style variable names used in shared config files
func mapEnvKey(key string) string {
	switch key {
	case "HOSTNAME":
		return "COMPUTERNAME"
	case "USER":
		return "USERNAME"
	}
	return key
}
