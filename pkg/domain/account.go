package domain

import (
	"strings"

	dErrors "tokenhost/pkg/domain-errors"
)

// Account is the opaque identity of a caller or holder. The host
// authenticates it; this core only compares and indexes it.
type Account string

// Nobody is the zero Account. It never satisfies any guard and never owns
// a balance.
const Nobody Account = ""

const maxAccountLen = 255

// ParseAccount validates an externally supplied account identifier at the
// trust boundary. Accounts are opaque beyond being non-empty printable text.
func ParseAccount(raw string) (Account, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Nobody, dErrors.New(dErrors.CodeInvalidInput, "account must not be empty")
	}
	if len(raw) > maxAccountLen {
		return Nobody, dErrors.New(dErrors.CodeInvalidInput, "account identifier too long")
	}
	for _, r := range raw {
		if r < 0x21 || r > 0x7e {
			return Nobody, dErrors.New(dErrors.CodeInvalidInput, "account contains non-printable characters")
		}
	}
	return Account(raw), nil
}

func (a Account) String() string { return string(a) }

// IsNobody reports whether the account is the zero identity.
func (a Account) IsNobody() bool { return a == Nobody }
