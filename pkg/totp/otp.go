package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	Digits = 6  // Standard 6-digit codes
	Period = 30 // 30-second validity window (RFC 6238 standard)

	// SkewSteps is the number of adjacent time steps accepted on either side
	// of the current one, absorbing clock drift between client and server.
	SkewSteps = 1

	secretSize = 20 // 160-bit secret (RFC 4226 recommendation)
)

var (
	// secretRegex ensures Base32 format without padding: uppercase A-Z, digits 2-7.
	secretRegex = regexp.MustCompile("^[A-Z2-7]+$")
	codeRegex   = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, Digits))
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateSecret produces a new Base32-encoded shared secret. Failure of the
// underlying randomness source is reported as ErrEntropyUnavailable and must
// never be retried with a weaker source.
func GenerateSecret() (string, error) {
	secret := make([]byte, secretSize)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrEntropyUnavailable, err)
	}
	return b32.EncodeToString(secret), nil
}

// ProvisioningURI builds a Key-Uri-Format otpauth URI embedding the secret,
// issuer, and account label for QR rendering by the caller:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func ProvisioningURI(secret, accountName, issuer string) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	if !secretRegex.MatchString(secret) {
		return "", ErrInvalidSecret
	}
	if accountName == "" {
		return "", ErrMissingAccountName
	}
	if issuer == "" {
		return "", ErrMissingIssuer
	}

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(issuer),
		url.PathEscape(accountName),
	)

	query := url.Values{}
	query.Set("secret", secret)
	query.Set("issuer", issuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", fmt.Sprintf("%d", Digits))
	query.Set("period", fmt.Sprintf("%d", Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// ManualEntryKey renders the secret grouped in blocks of four characters for
// human transcription into an authenticator app.
func ManualEntryKey(secret string) string {
	secret = strings.ToUpper(strings.TrimSpace(secret))
	var b strings.Builder
	for i, r := range secret {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DecodeManualEntryKey reverses ManualEntryKey, returning the canonical
// Base32 secret. Whitespace and case differences introduced during
// transcription are tolerated.
func DecodeManualEntryKey(key string) (string, error) {
	secret := strings.ToUpper(strings.Join(strings.Fields(key), ""))
	if secret == "" {
		return "", ErrMissingSecret
	}
	if !secretRegex.MatchString(secret) {
		return "", ErrInvalidSecret
	}
	return secret, nil
}

// GenerateCode computes the one-time code for the time step containing t.
func GenerateCode(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	counter := t.Unix() / int64(Period)
	return fmt.Sprintf("%0*d", Digits, hotp(key, counter, Digits)), nil
}

// VerifyCode reports whether code is valid for secret at time t, accepting
// the current time step and SkewSteps adjacent steps on either side. Each
// candidate is compared in constant time. Malformed codes are rejected
// before the secret is touched.
func VerifyCode(secret, code string, t time.Time) (bool, error) {
	code = strings.TrimSpace(code)
	if !codeRegex.MatchString(code) {
		return false, ErrInvalidCodeFormat
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	counter := t.Unix() / int64(Period)
	valid := false
	for i := -SkewSteps; i <= SkewSteps; i++ {
		candidate := fmt.Sprintf("%0*d", Digits, hotp(key, counter+int64(i), Digits))
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(code)) == 1 {
			valid = true
		}
	}
	return valid, nil
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.ToUpper(strings.TrimSpace(secret))
	if !secretRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}
	key, err := b32.DecodeString(secret)
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}

// hotp implements the RFC 4226 HMAC-based one-time password algorithm,
// converting a counter value into a numeric code with HMAC-SHA1 and
// dynamic truncation.
func hotp(key []byte, counter int64, digits int) int {
	// Counter as big-endian 8-byte array (RFC 4226 requirement)
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter = counter >> 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes)
	sum := mac.Sum(nil)

	// Dynamic truncation: last 4 bits select the offset, MSB cleared to
	// keep the extracted value positive.
	offset := sum[len(sum)-1] & 0x0f
	code := (int(sum[offset]&0x7f) << 24) |
		(int(sum[offset+1]&0xff) << 16) |
		(int(sum[offset+2]&0xff) << 8) |
		(int(sum[offset+3] & 0xff))

	return code % int(math.Pow10(digits))
}
