package tasks

import (
	"github.com/nspass/nspass-mockd/pkg/fixture"
	"github.com/nspass/nspass-mockd/pkg/model"
)

// Job names.
const (
	JobReset     = "reset"
	JobHeartbeat = "heartbeat"
)

// Heartbeat stamps lastHeartbeatAt on every online server and returns the
// number of servers touched.
func Heartbeat(store *fixture.Store) int {
	now := store.Now()
	return store.Servers.UpdateAll(func(s *model.Server) bool {
		if s.Status != model.ServerOnline {
			return false
		}
		s.LastHeartbeatAt = &now
		return true
	})
}
