package fixture

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/nspass/nspass-mockd/pkg/model"
)

//go:embed seed.yaml
var defaultSeedYAML []byte

// Seed errors.
var (
	ErrSeedNotFound = errors.New("seed file not found")
	ErrInvalidSeed  = errors.New("invalid seed data")
)

// Seed is the initial content of every collection.
type Seed struct {
	// DefaultPassword is hashed into every seeded user without a
	// passwordHash.
	DefaultPassword string `yaml:"defaultPassword"`

	Users      []model.User           `yaml:"users"`
	UserGroups []model.UserGroup      `yaml:"userGroups"`
	Servers    []model.Server         `yaml:"servers"`
	Egress     []model.EgressItem     `yaml:"egress"`
	Iptables   []model.IptablesConfig `yaml:"iptables"`
	Rules      []model.Rule           `yaml:"rules"`
	DNSConfigs []model.DNSConfig      `yaml:"dnsConfigs"`
	Website    model.WebsiteConfig    `yaml:"website"`
}

// DefaultSeed returns a fresh copy of the embedded seed data.
func DefaultSeed() (*Seed, error) {
	return ParseSeed(defaultSeedYAML)
}

// MustDefaultSeed is DefaultSeed for tests and init code; it panics if the
// embedded seed is broken.
func MustDefaultSeed() *Seed {
	s, err := DefaultSeed()
	if err != nil {
		panic(err)
	}
	return s
}

// LoadSeedFile reads a YAML seed from disk.
func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSeedNotFound, path)
		}
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates YAML seed data.
func ParseSeed(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Marshal encodes the seed as YAML.
func (s *Seed) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Validate checks that ids are positive and unique within each collection.
func (s *Seed) Validate() error {
	checks := []struct {
		name string
		ids  []int64
	}{
		{ResourceUsers, idsOf(s.Users)},
		{ResourceUserGroups, idsOf(s.UserGroups)},
		{ResourceServers, idsOf(s.Servers)},
		{ResourceEgress, idsOf(s.Egress)},
		{ResourceIptables, idsOf(s.Iptables)},
		{ResourceRules, idsOf(s.Rules)},
		{ResourceDNSConfigs, idsOf(s.DNSConfigs)},
	}
	for _, c := range checks {
		seen := make(map[int64]struct{}, len(c.ids))
		for i, v := range c.ids {
			if v < 1 {
				return fmt.Errorf("%w: %s[%d] has id %d", ErrInvalidSeed, c.name, i, v)
			}
			if _, dup := seen[v]; dup {
				return fmt.Errorf("%w: duplicate %s id %d", ErrInvalidSeed, c.name, v)
			}
			seen[v] = struct{}{}
		}
	}
	return nil
}

// HashPasswords fills in passwordHash for seeded users that have none,
// using DefaultPassword. It hashes once and shares the result.
func (s *Seed) HashPasswords(hash func(string) (string, error)) error {
	if s.DefaultPassword == "" {
		return nil
	}
	var hashed string
	for i := range s.Users {
		if s.Users[i].PasswordHash != "" {
			continue
		}
		if hashed == "" {
			h, err := hash(s.DefaultPassword)
			if err != nil {
				return fmt.Errorf("hashing seed password: %w", err)
			}
			hashed = h
		}
		s.Users[i].PasswordHash = hashed
	}
	return nil
}

// Clone returns a deep copy of the seed.
func (s *Seed) Clone() *Seed {
	c := *s
	c.Users = cloneAll(s.Users)
	c.UserGroups = cloneAll(s.UserGroups)
	c.Servers = cloneAll(s.Servers)
	c.Egress = cloneAll(s.Egress)
	c.Iptables = cloneAll(s.Iptables)
	c.Rules = cloneAll(s.Rules)
	c.DNSConfigs = cloneAll(s.DNSConfigs)
	return &c
}

func cloneAll[T Entity[T]](items []T) []T {
	if items == nil {
		return nil
	}
	out := slices.Clone(items)
	for i := range out {
		out[i] = out[i].Clone()
	}
	return out
}

func idsOf[T Entity[T]](items []T) []int64 {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.GetID()
	}
	return ids
}
