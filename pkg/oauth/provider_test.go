package oauth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExchanger(t *testing.T) {
	assert.Equal(t, []string{"github", "google"}, NewExchanger(nil).Providers())
	assert.Equal(t, []string{"gitlab"}, NewExchanger([]string{" GitLab ", "gitlab", ""}).Providers())
}

func TestExchange(t *testing.T) {
	ex := NewExchanger(nil)
	ctx := context.Background()

	a, err := ex.Exchange(ctx, "GitHub", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "github", a.Provider)
	assert.Regexp(t, `^github_[0-9a-f]{8}$`, a.Login)

	again, err := ex.Exchange(ctx, "github", "abc123")
	require.NoError(t, err)
	assert.Equal(t, a, again, "same code yields the same identity")

	other, err := ex.Exchange(ctx, "google", "abc123")
	require.NoError(t, err)
	assert.NotEqual(t, a.Subject, other.Subject)
}

func TestExchange_Failures(t *testing.T) {
	ex := NewExchanger(nil)
	ctx := context.Background()

	_, err := ex.Exchange(ctx, "facebook", "abc")
	assert.ErrorIs(t, err, ErrUnknownProvider)

	for _, code := range []string{"", "  ", "invalid", "invalid-code-1"} {
		_, err := ex.Exchange(ctx, "github", code)
		assert.ErrorIs(t, err, ErrInvalidCode, "code %q", code)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = ex.Exchange(cancelled, "github", "abc")
	assert.ErrorIs(t, err, context.Canceled)
}
