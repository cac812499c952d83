package models

import "unicode/utf8"

// Retention choices accepted at paste creation. Anything else resolves to
// no expiry rather than an error.
const (
	ExpireOneDay   = "1d"
	ExpireOneMonth = "1m"
	ExpireNever    = "never"

	secondsPerDay   = 86400
	secondsPerMonth = 2592000 // 30 days
)

// MaxTitleLen is the cap applied to paste titles, in characters.
const MaxTitleLen = 140

// Paste holds the metadata record for a stored paste. It round-trips
// through JSON as the meta.json blob kept next to the content blob.
type Paste struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Created   int64  `json:"created"` // unix seconds
	Expires   int64  `json:"expires"` // unix seconds, 0 = never
	Encrypted bool   `json:"encrypted"`
	Alg       string `json:"alg,omitempty"`
	BurnAfter bool   `json:"burn_after"`
	EditKey   string `json:"edit_key"`
}

// EncryptedPayload is the content blob of an encrypted paste. The server
// never inspects the ciphertext; it stores and returns it as-is.
type EncryptedPayload struct {
	CiphertextB64 string `json:"ciphertext_b64"`
	IVB64         string `json:"iv_b64"`
	Alg           string `json:"alg"`
}

// ComputeExpiry maps a retention choice to an absolute expiry timestamp.
// Unrecognized choices mean "never" (0).
func ComputeExpiry(created int64, choice string) int64 {
	switch choice {
	case ExpireOneDay:
		return created + secondsPerDay
	case ExpireOneMonth, "30d":
		return created + secondsPerMonth
	default:
		return 0
	}
}

// IsExpired reports whether a record with the given expiry is past due at
// now. A record expiring exactly at now is still valid.
func IsExpired(expires, now int64) bool {
	return expires != 0 && now > expires
}

// IsExpired checks if the paste has expired at the given instant.
func (p *Paste) IsExpired(now int64) bool {
	return IsExpired(p.Expires, now)
}

// TruncateTitle applies the title length cap. The cap counts characters,
// not bytes, so a multibyte title is never cut mid-rune.
func TruncateTitle(title string) string {
	if utf8.RuneCountInString(title) <= MaxTitleLen {
		return title
	}
	runes := []rune(title)
	return string(runes[:MaxTitleLen])
}
