package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolution(t *testing.T) {
	t.Parallel()

	id, ok := Resolved("42").ID()
	assert.True(t, ok)
	assert.Equal(t, "42", id)
	assert.Equal(t, "42", Resolved("42").String())
	assert.Empty(t, Resolved("42").Reason())

	r := Unresolved(ReasonNoEmail)
	_, ok = r.ID()
	assert.False(t, ok)
	assert.Equal(t, "unresolved:no-email", r.String())

	var zero Resolution
	assert.Equal(t, ReasonSessionError, zero.Reason())
	assert.Equal(t, "unresolved:session-error", zero.String())
}

func TestIsUnresolvedID(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUnresolvedID(""))
	assert.True(t, IsUnresolvedID("unresolved:no-user-for-email"))
	assert.False(t, IsUnresolvedID("42"))
}

func TestSessionUserID(t *testing.T) {
	t.Parallel()

	var nilSession *Session
	_, ok := nilSession.UserID()
	assert.False(t, ok)

	s := &Session{}
	s.User.Resolve(Resolved("7"))
	id, ok := s.UserID()
	assert.True(t, ok)
	assert.Equal(t, "7", id)
	assert.Equal(t, "7", s.User.ID)
}

func TestParseAuthProvider(t *testing.T) {
	t.Parallel()

	p, ok := ParseAuthProvider("github")
	assert.True(t, ok)
	assert.True(t, p.IsOAuth())

	p, ok = ParseAuthProvider("credentials")
	assert.True(t, ok)
	assert.False(t, p.IsOAuth())

	_, ok = ParseAuthProvider("facebook")
	assert.False(t, ok)
}
