package model

import "strings"

// DNS providers.
const (
	ProviderCloudflare = "cloudflare"
	ProviderAliyun     = "aliyun"
	ProviderDNSPod     = "dnspod"
)

// DNSConfig holds credentials for a DNS provider zone.
type DNSConfig struct {
	Base       `yaml:",inline"`
	ConfigName string `json:"configName" yaml:"configName"`
	Provider   string `json:"provider" yaml:"provider"`
	Domain     string `json:"domain" yaml:"domain"`
	APIKey     string `json:"apiKey" yaml:"apiKey"`
	TTL        int    `json:"ttl" yaml:"ttl"`
	Status     string `json:"status" yaml:"status"`
}

func (d DNSConfig) WithBase(b Base) DNSConfig {
	d.Base = b
	return d
}

func (d DNSConfig) Clone() DNSConfig { return d }

// Masked returns a copy of d safe to send to the browser. Only the last
// four characters of the API key survive.
func (d DNSConfig) Masked() DNSConfig {
	d.APIKey = MaskSecret(d.APIKey)
	return d
}

// MaskSecret replaces all but the last four runes of s with '*'.
func MaskSecret(s string) string {
	r := []rune(s)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}

type DNSConfigPatch struct {
	ConfigName *string `json:"configName"`
	Provider   *string `json:"provider"`
	Domain     *string `json:"domain"`
	APIKey     *string `json:"apiKey"`
	TTL        *int    `json:"ttl"`
	Status     *string `json:"status"`
}

// Apply copies the present fields of p onto d. An apiKey equal to the
// masked form of the stored key is the form echoing it back and is ignored.
func (p DNSConfigPatch) Apply(d *DNSConfig) {
	set(&d.ConfigName, p.ConfigName)
	set(&d.Provider, p.Provider)
	set(&d.Domain, p.Domain)
	if p.APIKey != nil && *p.APIKey != MaskSecret(d.APIKey) {
		d.APIKey = *p.APIKey
	}
	set(&d.TTL, p.TTL)
	set(&d.Status, p.Status)
}
