package access

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewCodecRequiresSecret(t *testing.T) {
	_, err := NewCodec(CodecConfig{})
	require.Error(t, err)
}

func TestIssueAndVerify(t *testing.T) {
	codec, err := NewCodec(CodecConfig{Secret: "test-secret"})
	require.NoError(t, err)

	token, err := codec.Issue("res-1", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.True(t, codec.Verify(token, "res-1"))
	require.False(t, codec.Verify(token, "res-2"))
	require.False(t, codec.Verify("", "res-1"))
}

func TestVerifyExpiredGrant(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	codec, err := NewCodec(CodecConfig{Secret: "test-secret", Clock: func() time.Time { return clock() }})
	require.NoError(t, err)

	token, err := codec.Issue("res-1", time.Minute)
	require.NoError(t, err)
	require.True(t, codec.Verify(token, "res-1"))

	clock = func() time.Time { return now.Add(2 * time.Minute) }
	require.False(t, codec.Verify(token, "res-1"))
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	codec, err := NewCodec(CodecConfig{Secret: "test-secret"})
	require.NoError(t, err)

	token, err := codec.Issue("res-1", time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	require.False(t, codec.Verify(tampered, "res-1"))
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	issuer, err := NewCodec(CodecConfig{Secret: "secret-a"})
	require.NoError(t, err)
	verifier, err := NewCodec(CodecConfig{Secret: "secret-b"})
	require.NoError(t, err)

	token, err := issuer.Issue("res-1", time.Hour)
	require.NoError(t, err)
	require.False(t, verifier.Verify(token, "res-1"))
}

func TestIssueRejectsBadInput(t *testing.T) {
	codec, err := NewCodec(CodecConfig{Secret: "test-secret"})
	require.NoError(t, err)

	_, err = codec.Issue("", time.Hour)
	require.Error(t, err)

	_, err = codec.Issue("res-1", 0)
	require.Error(t, err)
}

func TestGrantCookieShape(t *testing.T) {
	cookie := GrantCookie("res-1", "token-value", 3600, true)

	require.Equal(t, "x402_access_res-1", cookie.Name)
	require.Equal(t, "token-value", cookie.Value)
	require.Equal(t, "/", cookie.Path)
	require.Equal(t, 3600, cookie.MaxAge)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestGrantFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/pay/res-1", nil)
	require.Empty(t, GrantFromRequest(req, "res-1"))

	req.AddCookie(&http.Cookie{Name: CookieName("res-1"), Value: "token-value"})
	require.Equal(t, "token-value", GrantFromRequest(req, "res-1"))
	require.Empty(t, GrantFromRequest(req, "res-2"))
}
