package fixture

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/model"
)

// Resource names, as used in URLs and reset requests.
const (
	ResourceUsers      = "users"
	ResourceUserGroups = "user-groups"
	ResourceServers    = "servers"
	ResourceEgress     = "egress"
	ResourceIptables   = "iptables"
	ResourceRules      = "rules"
	ResourceDNSConfigs = "dns-configs"
	ResourceSettings   = "settings"
)

// ErrUnknownResource is returned by Reset for a name that is not a collection.
var ErrUnknownResource = errors.New("unknown resource")

// Store is the complete mock state of one server instance.
type Store struct {
	Users      *Collection[model.User]
	UserGroups *Collection[model.UserGroup]
	Servers    *Collection[model.Server]
	Egress     *Collection[model.EgressItem]
	Iptables   *Collection[model.IptablesConfig]
	Rules      *Collection[model.Rule]
	DNSConfigs *Collection[model.DNSConfig]

	mu      sync.RWMutex
	website model.WebsiteConfig
	seed    *Seed
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore builds a store from a deep copy of seed. A nil seed uses the
// embedded default.
func NewStore(seed *Seed, opts ...Option) (*Store, error) {
	if seed == nil {
		var err error
		if seed, err = DefaultSeed(); err != nil {
			return nil, err
		}
	} else if err := seed.Validate(); err != nil {
		return nil, err
	}

	s := &Store{seed: seed.Clone(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	s.Users = NewCollection(ResourceUsers, "用户", s.seed.Users, s.now).WithUnique(uniqueUser)
	s.UserGroups = NewCollection(ResourceUserGroups, "用户组", s.seed.UserGroups, s.now).WithUnique(uniqueGroup)
	s.Servers = NewCollection(ResourceServers, "服务器", s.seed.Servers, s.now).WithUnique(uniqueServer)
	s.Egress = NewCollection(ResourceEgress, "出口", s.seed.Egress, s.now)
	s.Iptables = NewCollection(ResourceIptables, "iptables配置", s.seed.Iptables, s.now)
	s.Rules = NewCollection(ResourceRules, "规则", s.seed.Rules, s.now)
	s.DNSConfigs = NewCollection(ResourceDNSConfigs, "DNS配置", s.seed.DNSConfigs, s.now).WithUnique(uniqueDNS)
	s.resetWebsite()
	return s, nil
}

// Names lists every resettable resource in a stable order.
func Names() []string {
	return []string{
		ResourceUsers, ResourceUserGroups, ResourceServers, ResourceEgress,
		ResourceIptables, ResourceRules, ResourceDNSConfigs, ResourceSettings,
	}
}

type resetter interface {
	Reset()
	Count() int
}

func (s *Store) collections() map[string]resetter {
	return map[string]resetter{
		ResourceUsers:      s.Users,
		ResourceUserGroups: s.UserGroups,
		ResourceServers:    s.Servers,
		ResourceEgress:     s.Egress,
		ResourceIptables:   s.Iptables,
		ResourceRules:      s.Rules,
		ResourceDNSConfigs: s.DNSConfigs,
	}
}

// Reset restores the named resources to the seed, or every resource when
// no names are given. Unknown names fail the whole call before anything is
// reset. It returns the names that were reset.
func (s *Store) Reset(names ...string) ([]string, error) {
	if len(names) == 0 {
		names = Names()
	}
	all := s.collections()
	for _, n := range names {
		if _, ok := all[n]; !ok && n != ResourceSettings {
			return nil, fmt.Errorf("%w: %q", ErrUnknownResource, n)
		}
	}

	done := make([]string, 0, len(names))
	for _, n := range names {
		if slices.Contains(done, n) {
			continue
		}
		if n == ResourceSettings {
			s.resetWebsite()
		} else {
			all[n].Reset()
		}
		done = append(done, n)
	}
	return done, nil
}

// Counts returns the number of records per collection.
func (s *Store) Counts() map[string]int {
	out := make(map[string]int)
	for name, c := range s.collections() {
		out[name] = c.Count()
	}
	return out
}

// Seed returns a copy of the seed this store resets to.
func (s *Store) Seed() *Seed {
	return s.seed.Clone()
}

// Now returns the store clock's current time in UTC.
func (s *Store) Now() time.Time {
	return s.now().UTC()
}

// Website returns the current site settings.
func (s *Store) Website() model.WebsiteConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.website
}

// UpdateWebsite mutates the site settings under the store lock and refreshes
// updatedAt. An error from mutate leaves the settings untouched.
func (s *Store) UpdateWebsite(mutate func(*model.WebsiteConfig) error) (model.WebsiteConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.website
	if err := mutate(&next); err != nil {
		return s.website, err
	}
	next.UpdatedAt = s.now().UTC()
	s.website = next
	return next, nil
}

func (s *Store) resetWebsite() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.website = s.seed.Website
	if s.website.UpdatedAt.IsZero() {
		s.website.UpdatedAt = s.now().UTC()
	}
}

func uniqueUser(candidate, existing model.User) error {
	if candidate.Name == existing.Name {
		return &envelope.ConflictError{Resource: "用户", Field: "用户名"}
	}
	if candidate.Email != "" && candidate.Email == existing.Email {
		return &envelope.ConflictError{Resource: "用户", Field: "邮箱"}
	}
	return nil
}

func uniqueGroup(candidate, existing model.UserGroup) error {
	if candidate.GroupName == existing.GroupName {
		return &envelope.ConflictError{Resource: "用户组", Field: "用户组名称"}
	}
	return nil
}

func uniqueServer(candidate, existing model.Server) error {
	if candidate.Name == existing.Name {
		return &envelope.ConflictError{Resource: "服务器", Field: "服务器名称"}
	}
	return nil
}

func uniqueDNS(candidate, existing model.DNSConfig) error {
	if candidate.ConfigName == existing.ConfigName {
		return &envelope.ConflictError{Resource: "DNS配置", Field: "配置名称"}
	}
	return nil
}
