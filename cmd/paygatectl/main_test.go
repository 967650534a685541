package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCLIEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PAYGATE_LISTEN_ADDR", "")
	t.Setenv("PAYGATE_DB_DRIVER", "sqlite")
	t.Setenv("PAYGATE_DB_PATH", filepath.Join(t.TempDir(), "paygate.db"))
	t.Setenv("PAYGATE_DATABASE_URL", "")
	t.Setenv("PAYGATE_SECRET_KEY", "5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a")
	t.Setenv("PAYGATE_LOG_LEVEL", "")
	t.Setenv("PAYGATE_LOG_FORMAT", "")
	t.Setenv("PAYGATE_OPERATOR_PASSWORD", "")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLIWithInput(t, "", args...)
}

func runCLIWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	root, a := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetIn(strings.NewReader(input))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	_ = a.close()
	return out.String(), err
}

func TestCLI_LegacyPromotionFlow(t *testing.T) {
	setupCLIEnv(t)

	out, err := runCLI(t, "operator", "add", "--email", "admin@x.com", "--password", "correctpass")
	require.NoError(t, err)
	assert.Contains(t, out, "admin@x.com")

	out, err = runCLI(t, "legacy", "add", "stripe", "--id", "legacy-1", "--credential", "sk_live_abcdefghijklmnop")
	require.NoError(t, err)
	assert.Contains(t, out, "legacy-1")
	assert.Contains(t, out, "production")

	out, err = runCLI(t, "origins", "stripe")
	require.NoError(t, err)
	assert.Contains(t, out, "legacy-1")
	assert.Contains(t, out, "using legacy: true")
	assert.Contains(t, out, "needs promotion: true")
	assert.NotContains(t, out, "sk_live_abcdefghijklmnop")

	_, err = runCLI(t, "promote", "stripe", "--email", "admin@x.com", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, "incorrect password, try again", err.Error())

	out, err = runCLI(t, "promote", "stripe", "--email", "admin@x.com", "--password", "correctpass")
	require.NoError(t, err)
	assert.Contains(t, out, "promoted to platform account")
	assert.Contains(t, out, "secret_key")
	assert.NotContains(t, out, "sk_live_abcdefghijklmnop")

	out, err = runCLI(t, "origins", "stripe")
	require.NoError(t, err)
	assert.Contains(t, out, "using legacy: false")
	assert.Contains(t, out, "needs promotion: false")
	assert.Contains(t, out, "legacy-1", "legacy row survives promotion")
}

func TestCLI_AccountSetAndPromoteByID(t *testing.T) {
	setupCLIEnv(t)

	_, err := runCLI(t, "operator", "add", "--email", "admin@x.com", "--password", "correctpass")
	require.NoError(t, err)

	out, err := runCLI(t, "account", "set", "asaas", "--scope", "tenant", "--scope-id", "t1",
		"--payload", "api_key=$aact_prod_tenantkey", "--payload", "wallet_id=w-1")
	require.NoError(t, err)
	assert.Contains(t, out, "tenant:t1")
	assert.Contains(t, out, "api_key, wallet_id")

	out, err = runCLI(t, "origins", "asaas", "--target", "tenant")
	require.NoError(t, err)
	assert.Contains(t, out, "needs promotion: false", "tenant target never needs promotion")

	_, err = runCLI(t, "promote", "asaas", "--email", "admin@x.com", "--password", "correctpass", "--candidate", "missing")
	assert.ErrorContains(t, err, "not found")

	out, err = runCLI(t, "promote", "asaas", "--email", "admin@x.com", "--password", "correctpass")
	require.NoError(t, err)
	assert.Contains(t, out, "api_key, wallet_id")
}

func TestCLI_Errors(t *testing.T) {
	setupCLIEnv(t)

	_, err := runCLI(t, "origins", "stripe", "--target", "legacy")
	assert.ErrorContains(t, err, "--target")

	_, err = runCLI(t, "account", "set", "stripe", "--scope", "platform")
	assert.ErrorContains(t, err, "set account")

	_, err = runCLI(t, "promote", "stone", "--email", "admin@x.com", "--password", "x")
	assert.ErrorContains(t, err, "no credential")

	out, err := runCLI(t, "origins", "stone")
	require.NoError(t, err)
	assert.Contains(t, out, "No credentials stored for stone")
}

func TestCLI_MissingSecretKey(t *testing.T) {
	setupCLIEnv(t)
	t.Setenv("PAYGATE_SECRET_KEY", "")

	_, err := runCLI(t, "origins", "stripe")
	assert.ErrorContains(t, err, "PAYGATE_SECRET_KEY")
}

func TestCLI_PasswordSources(t *testing.T) {
	setupCLIEnv(t)

	out, err := runCLIWithInput(t, "correctpass\n", "operator", "add", "--email", "admin@x.com", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "admin@x.com")

	_, err = runCLI(t, "legacy", "add", "stripe", "--id", "legacy-1", "--credential", "sk_live_abcdefghijklmnop")
	require.NoError(t, err)

	_, err = runCLIWithInput(t, "wrong\n", "promote", "stripe", "--email", "admin@x.com", "--password-stdin")
	require.Error(t, err)
	assert.Equal(t, "incorrect password, try again", err.Error())

	t.Setenv("PAYGATE_OPERATOR_PASSWORD", "correctpass")
	out, err = runCLI(t, "promote", "stripe", "--email", "admin@x.com")
	require.NoError(t, err)
	assert.Contains(t, out, "promoted to platform account")

	t.Setenv("PAYGATE_OPERATOR_PASSWORD", "")
	_, err = runCLI(t, "promote", "stripe", "--email", "admin@x.com")
	assert.ErrorContains(t, err, "operator password required")

	_, err = runCLIWithInput(t, "", "promote", "stripe", "--email", "admin@x.com", "--password-stdin")
	assert.ErrorContains(t, err, "empty input")
}

func TestReadPassword(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "newline terminated", input: "s3cret\n", want: "s3cret"},
		{name: "crlf", input: "s3cret\r\n", want: "s3cret"},
		{name: "no trailing newline", input: "s3cret", want: "s3cret"},
		{name: "only first line", input: "first\nsecond\n", want: "first"},
		{name: "keeps inner spaces", input: " pass word \n", want: " pass word "},
		{name: "empty", input: "", wantErr: true},
		{name: "blank line", input: "\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readPassword(strings.NewReader(tt.input), io.Discard)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
