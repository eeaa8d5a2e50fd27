// Package anonymize provides the anonymize-side data processors. Each
// processor overwrites the personally identifying fields of one data domain
// with non-identifying placeholder values while retaining the records.
package anonymize

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Anonymizer generates the placeholder values written over personal data.
// Values are random per invocation; erasure does not need to be repeatable,
// only irreversible.
type Anonymizer struct{}

// AnonymousValue returns a non-identifying placeholder for a name-like field.
func (Anonymizer) AnonymousValue() string {
	return "Anonymous-" + strings.ToUpper(uuid.NewString()[:8])
}

// AnonymousEmail returns a non-identifying, unique placeholder address.
// Uniqueness matters: email columns usually carry unique indexes.
func (Anonymizer) AnonymousEmail() string {
	return fmt.Sprintf("anonymous.%s@gdpr.invalid", uuid.NewString())
}
