package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestServerClone_DeepCopiesTags(t *testing.T) {
	hb := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	orig := Server{Name: "hk-01", Tags: []string{"hk", "premium"}, LastHeartbeatAt: &hb}

	c := orig.Clone()
	c.Tags[0] = "changed"
	*c.LastHeartbeatAt = time.Time{}

	assert.Equal(t, "hk", orig.Tags[0])
	assert.Equal(t, hb, *orig.LastHeartbeatAt)
}

func TestUserPatch_MergeLaw(t *testing.T) {
	orig := User{
		Base:   Base{ID: 1},
		Name:   "张三",
		Email:  "zhangsan@example.com",
		Role:   RoleUser,
		Status: UserActive,
	}

	var patch UserPatch
	require.NoError(t, json.Unmarshal([]byte(`{"status":"inactive","trafficLimit":0}`), &patch))

	got := orig
	patch.Apply(&got)

	assert.Equal(t, UserInactive, got.Status)
	assert.Equal(t, int64(0), got.TrafficLimit)
	assert.Equal(t, orig.Name, got.Name)
	assert.Equal(t, orig.Email, got.Email)
	assert.Equal(t, orig.Role, got.Role)
	assert.Equal(t, orig.ID, got.ID)
}

func TestUserPatch_ExpireAtNull(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		body string
		want *time.Time
	}{
		{"absent keeps value", `{"status":"active"}`, &exp},
		{"null clears value", `{"expireAt":null}`, nil},
		{"value replaces", `{"expireAt":"2031-06-01T00:00:00Z"}`, ptr(time.Date(2031, 6, 1, 0, 0, 0, 0, time.UTC))},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			u := User{ExpireAt: ptr(exp)}
			var patch UserPatch
			require.NoError(t, json.Unmarshal([]byte(tt.body), &patch))
			patch.Apply(&u)
			if tt.want == nil {
				assert.Nil(t, u.ExpireAt)
				return
			}
			require.NotNil(t, u.ExpireAt)
			assert.True(t, tt.want.Equal(*u.ExpireAt))
		})
	}
}

func TestNullable(t *testing.T) {
	var absent struct {
		N Nullable[int] `json:"n"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	assert.False(t, absent.N.Set)

	raw, err := json.Marshal(struct {
		A Nullable[int] `json:"a"`
		B Nullable[int] `json:"b"`
	}{A: Some(3), B: Null[int]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":3,"b":null}`, string(raw))
}

func TestServerPatch_ReplacesTagsWithoutAliasing(t *testing.T) {
	tags := []string{"a"}
	s := Server{Tags: []string{"x"}}
	ServerPatch{Tags: &tags}.Apply(&s)
	tags[0] = "mutated"
	assert.Equal(t, []string{"a"}, s.Tags)
}

func TestUser_PasswordHashNeverSerialized(t *testing.T) {
	raw, err := json.Marshal(User{Name: "admin", PasswordHash: "$2a$10$secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.NotContains(t, string(raw), "passwordHash")
}

func TestBase_FlattenedInJSON(t *testing.T) {
	raw, err := json.Marshal(Rule{Base: Base{ID: 7}, RuleName: "r"})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.InDelta(t, 7, m["id"], 0)
	assert.Contains(t, m, "createdAt")
	assert.NotContains(t, m, "Base")
}

func TestMaskSecret(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"abc", "***"},
		{"abcd", "****"},
		{"cf-token-1234", "*********1234"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskSecret(tt.in), tt.in)
	}

	d := DNSConfig{APIKey: "secret-key-9999"}
	assert.Equal(t, "***********9999", d.Masked().APIKey)
	assert.Equal(t, "secret-key-9999", d.APIKey)
}

func TestWebsiteConfigPatch(t *testing.T) {
	c := WebsiteConfig{SiteName: "NSPass", InviteCode: "nspass2024", AllowRegister: true}
	WebsiteConfigPatch{AllowRegister: ptr(false), Announcement: ptr("维护通知")}.Apply(&c)

	assert.False(t, c.AllowRegister)
	assert.Equal(t, "维护通知", c.Announcement)
	assert.Equal(t, "nspass2024", c.InviteCode)
}

func TestDNSConfigPatch_IgnoresMaskedKey(t *testing.T) {
	d := DNSConfig{APIKey: "cf-9f8e7d6c5b4a3210"}

	DNSConfigPatch{APIKey: ptr(d.Masked().APIKey)}.Apply(&d)
	assert.Equal(t, "cf-9f8e7d6c5b4a3210", d.APIKey)

	DNSConfigPatch{APIKey: ptr("new-key-0001")}.Apply(&d)
	assert.Equal(t, "new-key-0001", d.APIKey)
}
