package handlers

import (
	"net/http"

	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/fixture"
	"github.com/nspass/nspass-mockd/pkg/model"
	"github.com/nspass/nspass-mockd/pkg/router"
)

var dnsFields = fixture.Fields[model.DNSConfig]{
	fixture.ContainsField("configName", func(d model.DNSConfig) string { return d.ConfigName }),
	fixture.EqualsField("provider", func(d model.DNSConfig) string { return d.Provider }),
	fixture.ContainsField("domain", func(d model.DNSConfig) string { return d.Domain }),
	fixture.EqualsField("status", func(d model.DNSConfig) string { return d.Status }),
}

func (h *Handlers) dnsResource() *resource[model.DNSConfig, model.DNSConfigPatch] {
	return &resource[model.DNSConfig, model.DNSConfigPatch]{
		coll:   h.store.DNSConfigs,
		fields: dnsFields,
		schema: "dns-config",
		newItem: func() model.DNSConfig {
			return model.DNSConfig{TTL: 600, Status: "active"}
		},
		present: model.DNSConfig.Masked,
	}
}

// DNSTestResult is returned by POST /dns-configs/:id/test.
type DNSTestResult struct {
	ID       int64  `json:"id"`
	Provider string `json:"provider"`
	Domain   string `json:"domain"`
	Valid    bool   `json:"valid"`
}

func (h *Handlers) registerDNS(g *router.Group) {
	h.dnsConfigs.register(g, "/dns-configs")

	g.POST("/dns-configs/:id/test", h.action(func(req *router.Request) *envelope.Reply {
		d, err := h.dnsConfigs.lookup(req)
		if err != nil {
			return envelope.FromError(err)
		}
		res := DNSTestResult{ID: d.ID, Provider: d.Provider, Domain: d.Domain, Valid: d.Status == "active"}
		if !res.Valid {
			return &envelope.Reply{
				StatusCode: http.StatusOK,
				Success:    false,
				Message:    "DNS配置未启用",
				ErrorCode:  "DNS_TEST_FAILED",
				Data:       res,
			}
		}
		return envelope.OKMessage("DNS配置测试成功", res)
	}), router.Name("dns-configs.test"), router.Summary("测试DNS配置"))
}
