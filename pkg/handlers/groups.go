package handlers

import (
	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/fixture"
	"github.com/nspass/nspass-mockd/pkg/model"
	"github.com/nspass/nspass-mockd/pkg/router"
)

var groupFields = fixture.Fields[model.UserGroup]{
	fixture.ContainsField("groupName", func(g model.UserGroup) string { return g.GroupName }),
}

func (h *Handlers) groupResource() *resource[model.UserGroup, model.UserGroupPatch] {
	return &resource[model.UserGroup, model.UserGroupPatch]{
		coll:    h.store.UserGroups,
		fields:  groupFields,
		schema:  "user-group",
		present: h.withUserCount,
	}
}

// withUserCount fills the derived member count.
func (h *Handlers) withUserCount(g model.UserGroup) model.UserGroup {
	g.UserCount = len(h.store.Users.Filter(func(u model.User) bool { return u.UserGroupID == g.ID }))
	return g
}

func (h *Handlers) registerGroups(g *router.Group) {
	h.groups.register(g, "/user-groups")

	g.GET("/user-groups/:id/users", func(req *router.Request) *envelope.Reply {
		group, err := h.groups.lookup(req)
		if err != nil {
			return envelope.FromError(err)
		}
		return h.users.page(req, func(u model.User) bool { return u.UserGroupID == group.ID })
	}, router.Name("user-groups.users"), router.Summary("用户组成员"))
}
