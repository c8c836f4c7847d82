package twofactor

import "golang.org/x/crypto/bcrypt"

// Policy decides whether an enroll/remove request must carry a verified
// account password before it reaches the Service. Kept separate from the
// state machine so new credential kinds never touch it: password-holding
// accounts re-confirm their password, SSO-only accounts rely solely on
// proof of second-factor possession via code entry.
type Policy struct{}

// NewPolicy creates the password-confirmation policy.
func NewPolicy() Policy {
	return Policy{}
}

// RequiresPasswordConfirmation reports whether the account must re-enter
// its password to enroll or remove a second factor.
func (Policy) RequiresPasswordConfirmation(account Account) bool {
	return account.CredentialKind == CredentialKindPassword
}

// Authorize verifies suppliedPassword against the account's stored
// credential when confirmation is required, and is a no-op success when it
// is not. Returns ErrPasswordMismatch on failure; the enroll/remove
// operation must not be attempted then.
func (p Policy) Authorize(account Account, suppliedPassword string) error {
	if !p.RequiresPasswordConfirmation(account) {
		return nil
	}
	if len(account.PasswordHash) == 0 {
		return ErrPasswordMismatch
	}
	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(suppliedPassword)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}
