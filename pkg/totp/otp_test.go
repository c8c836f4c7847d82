package totp_test

import (
	"testing"
	"time"

	"github.com/dmitrymomot/twofakit/pkg/totp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rfcSecret is the RFC 6238 Appendix B reference secret ("12345678901234567890").
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestGenerateSecret(t *testing.T) {
	t.Parallel()
	secret, err := totp.GenerateSecret()
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.Regexp(t, "^[A-Z2-7]+$", secret)

	other, err := totp.GenerateSecret()
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}

func TestGenerateCode_ReferenceVectors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		unix int64
		want string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1111111111, "050471"},
		{1234567890, "005924"},
		{2000000000, "279037"},
		{20000000000, "353130"},
	}

	for _, tt := range tests {
		code, err := totp.GenerateCode(rfcSecret, time.Unix(tt.unix, 0))
		require.NoError(t, err)
		assert.Equal(t, tt.want, code, "t=%d", tt.unix)
	}
}

func TestGenerateCode_InvalidSecret(t *testing.T) {
	t.Parallel()
	_, err := totp.GenerateCode("not base32!", time.Now())
	assert.ErrorIs(t, err, totp.ErrInvalidSecret)
}

func TestVerifyCode(t *testing.T) {
	t.Parallel()
	now := time.Unix(1700000000, 0)

	code, err := totp.GenerateCode(rfcSecret, now)
	require.NoError(t, err)

	t.Run("current step", func(t *testing.T) {
		t.Parallel()
		ok, err := totp.VerifyCode(rfcSecret, code, now)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("previous step within skew", func(t *testing.T) {
		t.Parallel()
		ok, err := totp.VerifyCode(rfcSecret, code, now.Add(30*time.Second))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("next step within skew", func(t *testing.T) {
		t.Parallel()
		ok, err := totp.VerifyCode(rfcSecret, code, now.Add(-30*time.Second))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("outside skew window", func(t *testing.T) {
		t.Parallel()
		ok, err := totp.VerifyCode(rfcSecret, code, now.Add(90*time.Second))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("wrong code", func(t *testing.T) {
		t.Parallel()
		wrong := "000000"
		if code == wrong {
			wrong = "000001"
		}
		ok, err := totp.VerifyCode(rfcSecret, wrong, now)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("surrounding whitespace tolerated", func(t *testing.T) {
		t.Parallel()
		ok, err := totp.VerifyCode(rfcSecret, "  "+code+" ", now)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestVerifyCode_MalformedInput(t *testing.T) {
	t.Parallel()
	now := time.Now()

	tests := []struct {
		name    string
		secret  string
		code    string
		wantErr error
	}{
		{"empty code", rfcSecret, "", totp.ErrInvalidCodeFormat},
		{"short code", rfcSecret, "12345", totp.ErrInvalidCodeFormat},
		{"long code", rfcSecret, "1234567", totp.ErrInvalidCodeFormat},
		{"non-numeric code", rfcSecret, "12345a", totp.ErrInvalidCodeFormat},
		{"malformed secret", "123!", "123456", totp.ErrInvalidSecret},
		{"empty secret", "", "123456", totp.ErrInvalidSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, err := totp.VerifyCode(tt.secret, tt.code, now)
			assert.False(t, ok)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProvisioningURI(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		secret      string
		accountName string
		issuer      string
		want        string
		wantErr     error
	}{
		{
			name:        "basic URI",
			secret:      "ABCDEFGHIJKLMNOP",
			accountName: "test@example.com",
			issuer:      "TestApp",
			want:        "otpauth://totp/TestApp:test@example.com?algorithm=SHA1&digits=6&issuer=TestApp&period=30&secret=ABCDEFGHIJKLMNOP",
		},
		{
			name:        "special characters escaped",
			secret:      "ABCDEFGHIJKLMNOP",
			accountName: "test+user@example.com",
			issuer:      "Test & App",
			want:        "otpauth://totp/Test%20&%20App:test+user@example.com?algorithm=SHA1&digits=6&issuer=Test+%26+App&period=30&secret=ABCDEFGHIJKLMNOP",
		},
		{
			name:        "missing secret",
			accountName: "test@example.com",
			issuer:      "TestApp",
			wantErr:     totp.ErrMissingSecret,
		},
		{
			name:        "invalid secret",
			secret:      "lowercase",
			accountName: "test@example.com",
			issuer:      "TestApp",
			wantErr:     totp.ErrInvalidSecret,
		},
		{
			name:    "missing account name",
			secret:  "ABCDEFGHIJKLMNOP",
			issuer:  "TestApp",
			wantErr: totp.ErrMissingAccountName,
		},
		{
			name:        "missing issuer",
			secret:      "ABCDEFGHIJKLMNOP",
			accountName: "test@example.com",
			wantErr:     totp.ErrMissingIssuer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := totp.ProvisioningURI(tt.secret, tt.accountName, tt.issuer)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManualEntryKey_RoundTrip(t *testing.T) {
	t.Parallel()
	secret, err := totp.GenerateSecret()
	require.NoError(t, err)

	key := totp.ManualEntryKey(secret)
	assert.Regexp(t, `^([A-Z2-7]{4} )*[A-Z2-7]{1,4}$`, key)

	decoded, err := totp.DecodeManualEntryKey(key)
	require.NoError(t, err)
	assert.Equal(t, secret, decoded)
}

func TestDecodeManualEntryKey(t *testing.T) {
	t.Parallel()

	decoded, err := totp.DecodeManualEntryKey("gezd gnbv gy3t qojq gezd gnbv gy3t qojq")
	require.NoError(t, err)
	assert.Equal(t, rfcSecret, decoded)

	_, err = totp.DecodeManualEntryKey("")
	assert.ErrorIs(t, err, totp.ErrMissingSecret)

	_, err = totp.DecodeManualEntryKey("not a secret!")
	assert.ErrorIs(t, err, totp.ErrInvalidSecret)
}
