package models

// AgentMode selects which responsibilities this process takes on.
type AgentMode string

const (
	// AgentModeWorker only processes the crawl queue.
	AgentModeWorker AgentMode = "worker"
	// AgentModeManager only serves the HTTP API.
	AgentModeManager AgentMode = "manager"
	// AgentModeAll does both.
	AgentModeAll AgentMode = "all"
)

// ParseAgentMode maps an AGENT_MODE value to an AgentMode. Unset or
// unrecognized values fall back to AgentModeAll.
func ParseAgentMode(s string) AgentMode {
	switch AgentMode(s) {
	case AgentModeWorker, AgentModeManager:
		return AgentMode(s)
	}
	return AgentModeAll
}

// ShouldProcessQueue reports whether this mode runs crawl schedulers.
func (m AgentMode) ShouldProcessQueue() bool {
	return m == AgentModeWorker || m == AgentModeAll
}

// ShouldManageCluster reports whether this mode serves the HTTP API.
func (m AgentMode) ShouldManageCluster() bool {
	return m == AgentModeManager || m == AgentModeAll
}

func (m AgentMode) String() string {
	return string(m)
}
