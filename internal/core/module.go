package core

// ModuleID uniquely identifies a module, namespaced by concern
// (e.g. "channel.telegram", "storage.notion", "gateway.http").
type ModuleID string

// Namespace returns the part of the ID before the first dot, or the whole ID
// if there is no dot.
func (id ModuleID) Namespace() string {
	for i := 0; i < len(id); i++ {
		if id[i] == '.' {
			return string(id[:i])
		}
	}
	return string(id)
}

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	// ID is the unique module identifier.
	ID ModuleID

	// New returns a fresh, unprovisioned instance of the module.
	New func() Module
}

// Module is the minimal interface every module must implement.
// Optional capabilities are expressed through the lifecycle interfaces
// (Configurable, Provisioner, Validator, Starter, Stopper).
type Module interface {
	ModuleInfo() ModuleInfo
}
