//go:build !linux && !darwin

package system

// InitResourceLimits ничего не делает: лимит RLIMIT_NOFILE поднимается только на Linux и macOS.
func InitResourceLimits() {}
