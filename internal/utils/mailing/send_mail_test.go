package mailing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailerWithoutHostDropsMail(t *testing.T) {
	t.Setenv("SMTP_HOST", "")

	m := NewMailer()
	_, ok := m.(nopMailer)
	require.True(t, ok)
	assert.NoError(t, m.SendMail("cook@example.com", "hi", "body"))
}

func TestWelcomeBodyEscapesInput(t *testing.T) {
	body, err := WelcomeBody(UserMailData{FirstName: "<b>Ann</b>", Username: "ann", AppURL: "http://localhost"})
	require.NoError(t, err)
	assert.Contains(t, body, "&lt;b&gt;Ann&lt;/b&gt;")
	assert.Contains(t, body, "ann")
}

func TestPasswordChangedBody(t *testing.T) {
	body, err := PasswordChangedBody(UserMailData{FirstName: "Ann", Username: "ann"})
	require.NoError(t, err)
	assert.Contains(t, body, "password")
	assert.Contains(t, body, "Ann")
}
