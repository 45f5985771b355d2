package fixture

import (
	"time"

	"github.com/nspass/nspass-mockd/pkg/model"
)

// Overview summarizes the store for the dashboard landing page and the
// system-info stream.
type Overview struct {
	TotalUsers      int       `json:"totalUsers"`
	ActiveUsers     int       `json:"activeUsers"`
	TotalUserGroups int       `json:"totalUserGroups"`
	TotalServers    int       `json:"totalServers"`
	OnlineServers   int       `json:"onlineServers"`
	TotalEgress     int       `json:"totalEgress"`
	TotalIptables   int       `json:"totalIptables"`
	TotalRules      int       `json:"totalRules"`
	ActiveRules     int       `json:"activeRules"`
	TotalDNSConfigs int       `json:"totalDnsConfigs"`
	TotalTraffic    int64     `json:"totalTraffic"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

// Overview computes a snapshot of the current counts.
func (s *Store) Overview() Overview {
	users := s.Users.All()
	servers := s.Servers.All()
	rules := s.Rules.All()

	o := Overview{
		TotalUsers:      len(users),
		TotalUserGroups: s.UserGroups.Count(),
		TotalServers:    len(servers),
		TotalEgress:     s.Egress.Count(),
		TotalIptables:   s.Iptables.Count(),
		TotalRules:      len(rules),
		TotalDNSConfigs: s.DNSConfigs.Count(),
		GeneratedAt:     s.Now(),
	}
	for _, u := range users {
		if u.Status == model.UserActive {
			o.ActiveUsers++
		}
		o.TotalTraffic += u.TrafficUsed
	}
	for _, srv := range servers {
		if srv.Status == model.ServerOnline {
			o.OnlineServers++
		}
	}
	for _, r := range rules {
		if r.Status == model.RuleActive {
			o.ActiveRules++
		}
	}
	return o
}
