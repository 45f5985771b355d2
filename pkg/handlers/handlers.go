package handlers

import (
	"log/slog"
	"time"

	"github.com/nspass/nspass-mockd/pkg/auth"
	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/fixture"
	"github.com/nspass/nspass-mockd/pkg/logging"
	"github.com/nspass/nspass-mockd/pkg/model"
	"github.com/nspass/nspass-mockd/pkg/oauth"
	"github.com/nspass/nspass-mockd/pkg/router"
)

// DefaultInstallBaseURL is where generated install commands fetch the agent
// script from.
const DefaultInstallBaseURL = "https://get.nspass.com"

// Options configures the mock API.
type Options struct {
	Store  *fixture.Store
	Issuer *auth.Issuer
	OAuth  *oauth.Exchanger
	// ActionLatency delays every action route, to make spinners visible.
	ActionLatency  time.Duration
	InstallBaseURL string
	Logger         *slog.Logger
}

// Handlers serves the mock API for one store.
type Handlers struct {
	store          *fixture.Store
	issuer         *auth.Issuer
	oauth          *oauth.Exchanger
	latency        time.Duration
	installBaseURL string
	log            *slog.Logger

	users      *resource[model.User, model.UserPatch]
	groups     *resource[model.UserGroup, model.UserGroupPatch]
	servers    *resource[model.Server, model.ServerPatch]
	egress     *resource[model.EgressItem, model.EgressPatch]
	iptables   *resource[model.IptablesConfig, model.IptablesPatch]
	rules      *resource[model.Rule, model.RulePatch]
	dnsConfigs *resource[model.DNSConfig, model.DNSConfigPatch]
}

// New builds the handlers. Store is required; a missing Issuer or OAuth
// exchanger gets a development default.
func New(opts Options) *Handlers {
	if opts.Issuer == nil {
		opts.Issuer = auth.NewIssuer("nspass-mockd-dev-secret", 24*time.Hour)
	}
	if opts.OAuth == nil {
		opts.OAuth = oauth.NewExchanger(nil)
	}
	if opts.InstallBaseURL == "" {
		opts.InstallBaseURL = DefaultInstallBaseURL
	}
	h := &Handlers{
		store:          opts.Store,
		issuer:         opts.Issuer,
		oauth:          opts.OAuth,
		latency:        opts.ActionLatency,
		installBaseURL: opts.InstallBaseURL,
		log:            logging.Component(opts.Logger, "handlers"),
	}
	h.users = h.userResource()
	h.groups = h.groupResource()
	h.servers = h.serverResource()
	h.egress = h.egressResource()
	h.iptables = h.iptablesResource()
	h.rules = h.ruleResource()
	h.dnsConfigs = h.dnsResource()
	return h
}

// Register adds every mock API route to r.
func (h *Handlers) Register(r *router.Router) {
	h.registerUsers(r.Group(fixture.ResourceUsers, envelope.ConventionA))
	h.registerGroups(r.Group(fixture.ResourceUserGroups, envelope.ConventionA))
	h.registerServers(r.Group(fixture.ResourceServers, envelope.ConventionA))
	h.registerEgress(r.Group(fixture.ResourceEgress, envelope.ConventionA))
	h.registerIptables(r.Group(fixture.ResourceIptables, envelope.ConventionA))
	h.registerRules(r.Group(fixture.ResourceRules, envelope.ConventionA))
	h.registerDNS(r.Group(fixture.ResourceDNSConfigs, envelope.ConventionB))
	h.registerSettings(r.Group(fixture.ResourceSettings, envelope.ConventionA))
	h.registerDashboard(r.Group("dashboard", envelope.ConventionA))
	h.registerAuth(r.Group("auth", envelope.ConventionB))
}

// action wraps an action handler with the configured latency. A request
// cancelled while waiting is answered without running the action.
func (h *Handlers) action(fn router.HandlerFunc) router.HandlerFunc {
	if h.latency <= 0 {
		return fn
	}
	return func(req *router.Request) *envelope.Reply {
		t := time.NewTimer(h.latency)
		defer t.Stop()
		select {
		case <-req.Context().Done():
			return envelope.FromError(req.Context().Err())
		case <-t.C:
		}
		return fn(req)
	}
}

// mustExist returns a validation error when a referenced record is missing.
func mustExist[T fixture.Entity[T]](coll *fixture.Collection[T], field string, refID *int64) error {
	if refID == nil || *refID == 0 {
		return nil
	}
	if _, ok := coll.Get(*refID); !ok {
		return &envelope.ValidationError{Field: field, Message: "关联的" + coll.Label() + "不存在"}
	}
	return nil
}

// latencyFor returns a stable fake round trip time for a record id.
func latencyFor(recordID int64) int {
	return 20 + int(recordID*37%180)
}
