package model

// UserGroup bundles users under a shared traffic quota.
type UserGroup struct {
	Base         `yaml:",inline"`
	GroupName    string `json:"groupName" yaml:"groupName"`
	Description  string `json:"description" yaml:"description"`
	TrafficLimit int64  `json:"trafficLimit" yaml:"trafficLimit"`
	// UserCount is derived from the user collection on every read.
	UserCount int `json:"userCount" yaml:"-"`
}

func (g UserGroup) WithBase(b Base) UserGroup {
	g.Base = b
	return g
}

func (g UserGroup) Clone() UserGroup { return g }

// UserGroupPatch is the body of user group create and update requests.
type UserGroupPatch struct {
	GroupName    *string `json:"groupName"`
	Description  *string `json:"description"`
	TrafficLimit *int64  `json:"trafficLimit"`
}

func (p UserGroupPatch) Apply(g *UserGroup) {
	set(&g.GroupName, p.GroupName)
	set(&g.Description, p.Description)
	set(&g.TrafficLimit, p.TrafficLimit)
}
