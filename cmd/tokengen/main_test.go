package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "chainid/internal/jwt_token"
	"chainid/pkg/secrets"
	"chainid/pkg/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCallerToken(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "tokengen-test-key")
	caller := testutil.Address(7)

	out, err := execute(t, "caller", caller.String(), "--ttl", "5m")
	require.NoError(t, err)

	claims, err := jwttoken.NewJWTService("tokengen-test-key", "chainid", "chainid-api").
		ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	got, err := claims.Caller()
	require.NoError(t, err)
	assert.Equal(t, caller, got)
}

func TestCallerRejectsBadAddress(t *testing.T) {
	_, err := execute(t, "caller", "not-an-address")
	assert.Error(t, err)
}

func TestCallerRequiresAddress(t *testing.T) {
	_, err := execute(t, "caller")
	assert.Error(t, err)
}

func TestOperatorSecret(t *testing.T) {
	out, err := execute(t, "operator")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	token := strings.TrimPrefix(lines[0], "operator token: ")
	hash := strings.TrimPrefix(lines[1], "OPERATOR_TOKEN_HASH=")
	assert.NoError(t, secrets.Verify(token, hash))
}
