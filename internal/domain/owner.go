package domain

import "strings"

const (
	// AnonymousAccount stands in for a missing account identifier
	AnonymousAccount = "anonymous"
	// NoProfile stands in for a missing profile identifier
	NoProfile = "none"
)

// OwnerKey identifies whose downloads a record belongs to.
// It is a plain value and compares with ==.
type OwnerKey struct {
	AccountID string `json:"account_id"`
	ProfileID string `json:"profile_id"`
}

// ResolveOwner derives the owner key for an account/profile pair.
// Missing halves fall back to sentinels so lookups never fail.
func ResolveOwner(accountID, profileID string) OwnerKey {
	key := OwnerKey{
		AccountID: strings.TrimSpace(accountID),
		ProfileID: strings.TrimSpace(profileID),
	}
	if key.AccountID == "" {
		key.AccountID = AnonymousAccount
	}
	if key.ProfileID == "" {
		key.ProfileID = NoProfile
	}
	return key
}

// HasProfile reports whether the key points at a real profile
func (k OwnerKey) HasProfile() bool {
	return k.ProfileID != "" && k.ProfileID != NoProfile
}

// String renders the key for logs
func (k OwnerKey) String() string {
	return k.AccountID + "/" + k.ProfileID
}
