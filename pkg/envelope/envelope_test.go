package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestNewPagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		page     int
		size     int
		total    int
		expected int
	}{
		{"empty", 1, 10, 0, 0},
		{"exact fit", 1, 10, 20, 2},
		{"partial last page", 2, 10, 21, 3},
		{"single record", 1, 10, 1, 1},
		{"zero page size", 1, 0, 5, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewPagination(tt.page, tt.size, tt.total)
			assert.Equal(t, tt.expected, p.TotalPages)
			assert.Equal(t, tt.total, p.Total)
			assert.Equal(t, tt.page, p.Current)
		})
	}
}

func TestRender_ConventionA(t *testing.T) {
	t.Parallel()

	t.Run("list reply carries pagination at top level", func(t *testing.T) {
		t.Parallel()
		r := Paged([]int{1, 2}, NewPagination(1, 10, 2))
		body := decode(t, r.Render(ConventionA))

		assert.Equal(t, true, body["success"])
		assert.Len(t, body["data"], 2)
		pg, ok := body["pagination"].(map[string]any)
		require.True(t, ok)
		assert.InDelta(t, 2, pg["total"], 0)
		assert.InDelta(t, 1, pg["totalPages"], 0)
		assert.NotContains(t, body, "status")
	})

	t.Run("failure drops error code", func(t *testing.T) {
		t.Parallel()
		r := Fail(http.StatusNotFound, CodeNotFound, "用户不存在")
		body := decode(t, r.Render(ConventionA))

		assert.Equal(t, false, body["success"])
		assert.Equal(t, "用户不存在", body["message"])
		assert.NotContains(t, body, "errorCode")
		assert.NotContains(t, body, "data")
	})
}

func TestRender_ConventionB(t *testing.T) {
	t.Parallel()

	t.Run("status block carries error code", func(t *testing.T) {
		t.Parallel()
		r := Fail(http.StatusUnauthorized, "OAUTH_FAILED", "授权失败")
		body := decode(t, r.Render(ConventionB))

		status, ok := body["status"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, false, status["success"])
		assert.Equal(t, "授权失败", status["message"])
		assert.Equal(t, "OAUTH_FAILED", status["errorCode"])
		assert.NotContains(t, body, "success")
	})

	t.Run("list reply nests items and pagination in data", func(t *testing.T) {
		t.Parallel()
		r := Paged([]string{"a"}, NewPagination(1, 10, 1))
		body := decode(t, r.Render(ConventionB))

		data, ok := body["data"].(map[string]any)
		require.True(t, ok)
		assert.Len(t, data["items"], 1)
		assert.Contains(t, data, "pagination")
		assert.NotContains(t, body, "pagination")
	})
}

func TestFromError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"validation", &ValidationError{Field: "name", Message: "名称不能为空"}, 400, CodeValidation, "名称不能为空"},
		{"not found", &NotFoundError{Resource: "服务器"}, 404, CodeNotFound, "服务器不存在"},
		{"conflict", &ConflictError{Resource: "用户", Field: "用户名"}, 409, CodeConflict, "用户名已存在"},
		{"parse", &ParseError{Err: errors.New("unexpected EOF")}, 400, CodeParse, MsgParse},
		{"unauthorized", &UnauthorizedError{}, 401, CodeUnauthorized, "未登录"},
		{"oauth", &UnauthorizedError{Message: "授权失败", ErrCode: "OAUTH_FAILED"}, 401, "OAUTH_FAILED", "授权失败"},
		{"wrapped", fmt.Errorf("update: %w", &NotFoundError{Resource: "规则"}), 404, CodeNotFound, "规则不存在"},
		{"unknown", errors.New("boom"), 500, CodeInternal, MsgInternal},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := FromError(tt.err)
			assert.False(t, r.Success)
			assert.Equal(t, tt.status, r.Status())
			assert.Equal(t, tt.code, r.ErrorCode)
			assert.Equal(t, tt.message, r.Message)
		})
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	Write(rec, ConventionA, FromError(&NotFoundError{Resource: "用户"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body BodyA
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "用户不存在", body.Message)
}

func TestReplyStatusDefaults(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusOK, (&Reply{Success: true}).Status())
	assert.Equal(t, http.StatusInternalServerError, (&Reply{}).Status())
	assert.Equal(t, http.StatusConflict, (&Reply{StatusCode: 409}).Status())
}
