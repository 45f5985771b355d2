package model

// Rule statuses.
const (
	RuleActive = "active"
	RulePaused = "paused"
)

// Rule forwards a listen port on a server to a target through an egress.
type Rule struct {
	Base          `yaml:",inline"`
	RuleName      string `json:"ruleName" yaml:"ruleName"`
	UserID        int64  `json:"userId" yaml:"userId"`
	ServerID      int64  `json:"serverId" yaml:"serverId"`
	EgressID      int64  `json:"egressId" yaml:"egressId"`
	Protocol      string `json:"protocol" yaml:"protocol"`
	ListenPort    int    `json:"listenPort" yaml:"listenPort"`
	TargetAddress string `json:"targetAddress" yaml:"targetAddress"`
	TargetPort    int    `json:"targetPort" yaml:"targetPort"`
	Status        string `json:"status" yaml:"status"`
	TrafficUsed   int64  `json:"trafficUsed" yaml:"trafficUsed"`
}

func (r Rule) WithBase(b Base) Rule {
	r.Base = b
	return r
}

func (r Rule) Clone() Rule { return r }

type RulePatch struct {
	RuleName      *string `json:"ruleName"`
	UserID        *int64  `json:"userId"`
	ServerID      *int64  `json:"serverId"`
	EgressID      *int64  `json:"egressId"`
	Protocol      *string `json:"protocol"`
	ListenPort    *int    `json:"listenPort"`
	TargetAddress *string `json:"targetAddress"`
	TargetPort    *int    `json:"targetPort"`
	Status        *string `json:"status"`
}

func (p RulePatch) Apply(r *Rule) {
	set(&r.RuleName, p.RuleName)
	set(&r.UserID, p.UserID)
	set(&r.ServerID, p.ServerID)
	set(&r.EgressID, p.EgressID)
	set(&r.Protocol, p.Protocol)
	set(&r.ListenPort, p.ListenPort)
	set(&r.TargetAddress, p.TargetAddress)
	set(&r.TargetPort, p.TargetPort)
	set(&r.Status, p.Status)
}
