package model

import "time"

// Server statuses.
const (
	ServerOnline      = "online"
	ServerOffline     = "offline"
	ServerMaintenance = "maintenance"
)

// Server is a forwarding node managed by the dashboard.
type Server struct {
	Base            `yaml:",inline"`
	Name            string     `json:"name" yaml:"name"`
	IPv4            string     `json:"ipv4" yaml:"ipv4"`
	IPv6            string     `json:"ipv6" yaml:"ipv6"`
	Region          string     `json:"region" yaml:"region"`
	Country         string     `json:"country" yaml:"country"`
	Status          string     `json:"status" yaml:"status"`
	Token           string     `json:"token" yaml:"token"`
	Tags            []string   `json:"tags" yaml:"tags"`
	LastHeartbeatAt *time.Time `json:"lastHeartbeatAt,omitempty" yaml:"lastHeartbeatAt,omitempty"`
}

func (s Server) WithBase(b Base) Server {
	s.Base = b
	return s
}

// Clone returns a deep copy of s, including its tag slice.
func (s Server) Clone() Server {
	s.Tags = cloneStrings(s.Tags)
	s.LastHeartbeatAt = cloneTime(s.LastHeartbeatAt)
	return s
}

// ServerPatch is the body of server create and update requests.
type ServerPatch struct {
	Name    *string   `json:"name"`
	IPv4    *string   `json:"ipv4"`
	IPv6    *string   `json:"ipv6"`
	Region  *string   `json:"region"`
	Country *string   `json:"country"`
	Status  *string   `json:"status"`
	Tags    *[]string `json:"tags"`
}

func (p ServerPatch) Apply(s *Server) {
	set(&s.Name, p.Name)
	set(&s.IPv4, p.IPv4)
	set(&s.IPv6, p.IPv6)
	set(&s.Region, p.Region)
	set(&s.Country, p.Country)
	set(&s.Status, p.Status)
	if p.Tags != nil {
		s.Tags = cloneStrings(*p.Tags)
	}
}
