package services

import (
	"crypto/subtle"

	"github.com/pmalinen/EncryptBin/models"
)

// EditAuthorizer decides whether a presented token may mutate a paste's
// metadata. The two policies are mutually exclusive per deployment: a
// process runs either per-paste edit keys or a shared token allowlist,
// never both.
type EditAuthorizer interface {
	Authorize(paste *models.Paste, presented string) bool
}

// NewAuthorizer picks the authorization policy at startup. A non-empty
// allowlist selects shared tokens; otherwise each paste's own edit key
// is the only accepted credential.
func NewAuthorizer(sharedTokens []string) EditAuthorizer {
	if len(sharedTokens) > 0 {
		return &sharedTokenAuthorizer{tokens: sharedTokens}
	}
	return &perPasteKeyAuthorizer{}
}

// perPasteKeyAuthorizer accepts only the edit key generated for the paste
// at creation time.
type perPasteKeyAuthorizer struct{}

func (a *perPasteKeyAuthorizer) Authorize(paste *models.Paste, presented string) bool {
	if presented == "" || paste.EditKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(paste.EditKey), []byte(presented)) == 1
}

// sharedTokenAuthorizer accepts any token from a pre-provisioned
// process-wide allowlist, regardless of which paste is being edited.
type sharedTokenAuthorizer struct {
	tokens []string
}

func (a *sharedTokenAuthorizer) Authorize(_ *models.Paste, presented string) bool {
	if presented == "" {
		return false
	}
	ok := false
	// Compare against every token so timing does not reveal which entry
	// matched.
	for _, t := range a.tokens {
		if subtle.ConstantTimeCompare([]byte(t), []byte(presented)) == 1 {
			ok = true
		}
	}
	return ok
}
