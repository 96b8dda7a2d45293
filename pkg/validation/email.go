package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-formfill/pkg/schema"
)

// EmailKey is the answer key holding the collected email address.
const EmailKey = schema.ReservedEmailKey

// InvalidEmailMessage is shown for a malformed address when no domain
// restriction applies.
const InvalidEmailMessage = "Please enter a valid email address"

var (
	// ErrEmailSyntax reports an address that fails the general syntax check.
	ErrEmailSyntax = errors.New("validation: invalid email address")
	// ErrEmailDomain reports an address outside the allowed domain.
	ErrEmailDomain = errors.New("validation: email outside allowed domain")

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// CheckEmail validates address against the form's email settings. With an
// allowed domain the address must end with "@" + domain (case-sensitive);
// otherwise it must look like local@domain.tld.
func CheckEmail(meta schema.Metadata, address string) error {
	if address == "" {
		return ErrEmailSyntax
	}
	if domain := meta.AllowedEmailDomain; domain != "" {
		if !strings.HasSuffix(address, "@"+domain) {
			return fmt.Errorf("%w: must end with @%s", ErrEmailDomain, domain)
		}
		return nil
	}
	if !emailPattern.MatchString(address) {
		return ErrEmailSyntax
	}
	return nil
}

// EmailFeedback returns the live message shown under the email input. An
// empty address and a valid one both produce no message.
func EmailFeedback(meta schema.Metadata, address string) string {
	if address == "" || CheckEmail(meta, address) == nil {
		return ""
	}
	if meta.AllowedEmailDomain != "" {
		return "Email must end with @" + meta.AllowedEmailDomain
	}
	return InvalidEmailMessage
}

// EmailHint is the helper text shown above the email input.
func EmailHint(meta schema.Metadata) string {
	if meta.AllowedEmailDomain == "" {
		return ""
	}
	return "Please use your " + meta.AllowedEmailDomain + " email address"
}

// EmailPlaceholder is the example address shown inside the email input.
func EmailPlaceholder(meta schema.Metadata) string {
	if meta.AllowedEmailDomain == "" {
		return "your.email@example.com"
	}
	return "username@" + meta.AllowedEmailDomain
}
