package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/model"
	"github.com/nspass/nspass-mockd/pkg/router"
)

func TestUserActions(t *testing.T) {
	env := newEnv(t)

	res := env.do(http.MethodPost, "/api/users/1/disable", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "inactive", res.dataMap()["status"])

	res = env.do(http.MethodPost, "/api/users/1/enable", nil)
	assert.Equal(t, "active", res.dataMap()["status"])

	res = env.do(http.MethodPost, "/api/users/1/resetTraffic", nil)
	assert.InDelta(t, 0, res.dataMap()["trafficUsed"], 0)

	before, _ := env.store.Users.Get(1)
	res = env.do(http.MethodPost, "/api/users/1/regenerateToken", nil)
	assert.NotEqual(t, before.SubscriptionToken, res.dataMap()["subscriptionToken"])
	assert.Len(t, res.dataMap()["subscriptionToken"], 32)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/api/users/99/enable", nil).Code)
}

func TestServerStats_NotShadowedByID(t *testing.T) {
	env := newEnv(t)

	res := env.do(http.MethodGet, "/api/servers/stats", nil)
	require.Equal(t, http.StatusOK, res.Code)
	data := res.dataMap()
	assert.InDelta(t, 4, data["total"], 0)
	assert.InDelta(t, 2, data["online"], 0)
	assert.InDelta(t, 1, data["offline"], 0)
	assert.InDelta(t, 1, data["maintenance"], 0)
	assert.InDelta(t, 3, data["byRegion"].(map[string]any)["亚太"], 0)
}

func TestServerActions(t *testing.T) {
	env := newEnv(t)

	res := env.do(http.MethodPost, "/api/servers/4/restart", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "online", res.dataMap()["status"])
	assert.NotEmpty(t, res.dataMap()["lastHeartbeatAt"])

	test := env.do(http.MethodPost, "/api/servers/3/test", nil)
	assert.True(t, test.success())
	assert.Equal(t, false, test.dataMap()["reachable"])

	test = env.do(http.MethodPost, "/api/servers/1/test", nil)
	assert.Equal(t, true, test.dataMap()["reachable"])
	assert.Positive(t, test.dataMap()["latencyMs"])

	regen := env.do(http.MethodPost, "/api/servers/1/regenerateToken", nil)
	token := regen.dataMap()["token"].(string)

	install := env.do(http.MethodGet, "/api/servers/1/install", nil)
	require.Equal(t, http.StatusOK, install.Code)
	cmd := install.dataMap()["command"].(string)
	assert.Contains(t, cmd, token)
	assert.True(t, strings.HasPrefix(cmd, "curl -fsSL https://get.nspass.com/install.sh"))
}

func TestIptablesActions(t *testing.T) {
	env := newEnv(t)

	res := env.do(http.MethodPost, "/api/iptables/4/enable", nil)
	assert.Equal(t, true, res.dataMap()["enabled"])
	res = env.do(http.MethodPost, "/api/iptables/1/disable", nil)
	assert.Equal(t, false, res.dataMap()["enabled"])

	byServer := env.do(http.MethodGet, "/api/iptables/servers/2", nil)
	require.Equal(t, http.StatusOK, byServer.Code)
	assert.Equal(t, []int64{3, 4}, ids(byServer.dataList()))

	rebuild := env.do(http.MethodPost, "/api/iptables/servers/1/rebuild", nil)
	require.Equal(t, http.StatusOK, rebuild.Code)
	assert.InDelta(t, 1, rebuild.dataMap()["rulesApplied"], 0, "config 1 was disabled above")

	missing := env.do(http.MethodGet, "/api/iptables/servers/99", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "服务器不存在", missing.message())
}

func TestRuleAndEgressActions(t *testing.T) {
	env := newEnv(t)

	res := env.do(http.MethodPost, "/api/rules/1/disable", nil)
	assert.Equal(t, "paused", res.dataMap()["status"])
	res = env.do(http.MethodPost, "/api/rules/1/enable", nil)
	assert.Equal(t, "active", res.dataMap()["status"])

	eg := env.do(http.MethodPost, "/api/egress/2/test", nil)
	assert.Equal(t, true, eg.dataMap()["reachable"])
	eg = env.do(http.MethodPost, "/api/egress/3/test", nil)
	assert.Equal(t, false, eg.dataMap()["reachable"])
}

func TestDNSTest(t *testing.T) {
	env := newEnv(t)

	ok := env.do(http.MethodPost, "/api/dns-configs/1/test", nil)
	assert.True(t, ok.success())
	assert.Equal(t, true, ok.dataMap()["valid"])

	bad := env.do(http.MethodPost, "/api/dns-configs/2/test", nil)
	assert.Equal(t, http.StatusOK, bad.Code)
	assert.False(t, bad.success())
	assert.Equal(t, "DNS_TEST_FAILED", bad.errorCode())
}

func TestSettings(t *testing.T) {
	env := newEnv(t)

	site := env.do(http.MethodGet, "/api/settings/website", nil)
	require.Equal(t, http.StatusOK, site.Code)
	assert.Equal(t, "nspass2024", site.dataMap()["inviteCode"])

	wrong := env.do(http.MethodPost, "/api/settings/validateInvite", map[string]any{"code": "wrong"})
	require.Equal(t, http.StatusOK, wrong.Code)
	assert.Equal(t, false, wrong.dataMap()["valid"])
	right := env.do(http.MethodPost, "/api/settings/validateInvite", map[string]any{"code": "nspass2024"})
	require.Equal(t, http.StatusOK, right.Code)
	assert.Equal(t, true, right.dataMap()["valid"])

	alias := env.do(http.MethodPost, "/api/settings/validateInvite", map[string]any{"inviteCode": "nspass2024"})
	assert.Equal(t, true, alias.dataMap()["valid"])
	missing := env.do(http.MethodPost, "/api/settings/validateInvite", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, missing.Code)

	upd := env.do(http.MethodPut, "/api/settings/website", map[string]any{"announcement": "系统维护"})
	require.Equal(t, http.StatusOK, upd.Code)
	assert.Equal(t, "系统维护", upd.dataMap()["announcement"])
	assert.Equal(t, "NSPass", upd.dataMap()["siteName"])

	regen := env.do(http.MethodPost, "/api/settings/regenerateInvite", nil)
	code := regen.dataMap()["inviteCode"].(string)
	assert.Len(t, code, 8)
	assert.Equal(t, code, env.store.Website().InviteCode)

	stale := env.do(http.MethodPost, "/api/settings/validateInvite", map[string]any{"inviteCode": "nspass2024"})
	assert.Equal(t, false, stale.dataMap()["valid"])
}

func TestDashboardOverview(t *testing.T) {
	env := newEnv(t)
	res := env.do(http.MethodGet, "/api/dashboard/overview", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.InDelta(t, 5, res.dataMap()["totalUsers"], 0)
	assert.InDelta(t, 2, res.dataMap()["onlineServers"], 0)
}

func TestActionLatency(t *testing.T) {
	env := newEnv(t, func(o *Options) { o.ActionLatency = 30 * time.Millisecond })

	start := time.Now()
	res := env.do(http.MethodPost, "/api/rules/1/disable", nil)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fn := env.h.action(func(*router.Request) *envelope.Reply {
		t.Fatal("action ran after cancel")
		return nil
	})
	rt, params, _ := env.router.Match(http.MethodPost, "/api/rules/1/enable")
	reply := fn(env.router.NewRequest(ctx, rt, "/api/rules/1/enable", params, nil, nil, nil))
	assert.False(t, reply.Success)

	r, _ := env.store.Rules.Get(1)
	assert.Equal(t, model.RulePaused, r.Status)
}
