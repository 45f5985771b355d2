package model

import "time"

// WebsiteConfig is the singleton site settings record.
type WebsiteConfig struct {
	SiteName        string    `json:"siteName" yaml:"siteName"`
	SiteDescription string    `json:"siteDescription" yaml:"siteDescription"`
	AllowRegister   bool      `json:"allowRegister" yaml:"allowRegister"`
	InviteRequired  bool      `json:"inviteRequired" yaml:"inviteRequired"`
	InviteCode      string    `json:"inviteCode" yaml:"inviteCode"`
	Announcement    string    `json:"announcement" yaml:"announcement"`
	ContactEmail    string    `json:"contactEmail" yaml:"contactEmail"`
	UpdatedAt       time.Time `json:"updatedAt" yaml:"updatedAt,omitempty"`
}

type WebsiteConfigPatch struct {
	SiteName        *string `json:"siteName"`
	SiteDescription *string `json:"siteDescription"`
	AllowRegister   *bool   `json:"allowRegister"`
	InviteRequired  *bool   `json:"inviteRequired"`
	InviteCode      *string `json:"inviteCode"`
	Announcement    *string `json:"announcement"`
	ContactEmail    *string `json:"contactEmail"`
}

func (p WebsiteConfigPatch) Apply(c *WebsiteConfig) {
	set(&c.SiteName, p.SiteName)
	set(&c.SiteDescription, p.SiteDescription)
	set(&c.AllowRegister, p.AllowRegister)
	set(&c.InviteRequired, p.InviteRequired)
	set(&c.InviteCode, p.InviteCode)
	set(&c.Announcement, p.Announcement)
	set(&c.ContactEmail, p.ContactEmail)
}
