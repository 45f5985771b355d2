package model

// Egress modes.
const (
	EgressDirect   = "direct"
	EgressIptables = "iptables"
	EgressSS2022   = "ss2022"
	EgressTrojan   = "trojan"
	EgressSnell    = "snell"
)

// EgressItem is an outbound endpoint attached to a server.
type EgressItem struct {
	Base          `yaml:",inline"`
	EgressName    string `json:"egressName" yaml:"egressName"`
	ServerID      int64  `json:"serverId" yaml:"serverId"`
	EgressMode    string `json:"egressMode" yaml:"egressMode"`
	TargetAddress string `json:"targetAddress" yaml:"targetAddress"`
	Port          int    `json:"port" yaml:"port"`
	Password      string `json:"password" yaml:"password"`
	Status        string `json:"status" yaml:"status"`
}

func (e EgressItem) WithBase(b Base) EgressItem {
	e.Base = b
	return e
}

func (e EgressItem) Clone() EgressItem { return e }

type EgressPatch struct {
	EgressName    *string `json:"egressName"`
	ServerID      *int64  `json:"serverId"`
	EgressMode    *string `json:"egressMode"`
	TargetAddress *string `json:"targetAddress"`
	Port          *int    `json:"port"`
	Password      *string `json:"password"`
	Status        *string `json:"status"`
}

func (p EgressPatch) Apply(e *EgressItem) {
	set(&e.EgressName, p.EgressName)
	set(&e.ServerID, p.ServerID)
	set(&e.EgressMode, p.EgressMode)
	set(&e.TargetAddress, p.TargetAddress)
	set(&e.Port, p.Port)
	set(&e.Password, p.Password)
	set(&e.Status, p.Status)
}
