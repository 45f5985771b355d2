package model

// IptablesConfig is a single iptables rule pushed to a server.
type IptablesConfig struct {
	Base       `yaml:",inline"`
	ServerID   int64  `json:"serverId" yaml:"serverId"`
	TableName  string `json:"tableName" yaml:"tableName"`
	ChainName  string `json:"chainName" yaml:"chainName"`
	Protocol   string `json:"protocol" yaml:"protocol"`
	SourceIP   string `json:"sourceIp" yaml:"sourceIp"`
	DestIP     string `json:"destIp" yaml:"destIp"`
	Port       int    `json:"port" yaml:"port"`
	RuleAction string `json:"ruleAction" yaml:"ruleAction"`
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	Priority   int    `json:"priority" yaml:"priority"`
}

func (c IptablesConfig) WithBase(b Base) IptablesConfig {
	c.Base = b
	return c
}

func (c IptablesConfig) Clone() IptablesConfig { return c }

type IptablesPatch struct {
	ServerID   *int64  `json:"serverId"`
	TableName  *string `json:"tableName"`
	ChainName  *string `json:"chainName"`
	Protocol   *string `json:"protocol"`
	SourceIP   *string `json:"sourceIp"`
	DestIP     *string `json:"destIp"`
	Port       *int    `json:"port"`
	RuleAction *string `json:"ruleAction"`
	Enabled    *bool   `json:"enabled"`
	Priority   *int    `json:"priority"`
}

func (p IptablesPatch) Apply(c *IptablesConfig) {
	set(&c.ServerID, p.ServerID)
	set(&c.TableName, p.TableName)
	set(&c.ChainName, p.ChainName)
	set(&c.Protocol, p.Protocol)
	set(&c.SourceIP, p.SourceIP)
	set(&c.DestIP, p.DestIP)
	set(&c.Port, p.Port)
	set(&c.RuleAction, p.RuleAction)
	set(&c.Enabled, p.Enabled)
	set(&c.Priority, p.Priority)
}
