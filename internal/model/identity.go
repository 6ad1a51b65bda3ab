package model

import "strings"

// IdentityProfile is the immutable scan input: everything we know about the
// user that a source could have listed. It is prepared once per scan from the
// user's stored (encrypted) profile and is read-only to the orchestrator.
//
// Design decision: We use a plain value struct rather than an interface
// because scanners only ever read fields. Copying the struct is cheap and
// guarantees no scanner can mutate the caller's snapshot.
type IdentityProfile struct {
	// FullName is the user's primary legal name.
	FullName string `json:"full_name"`

	// Aliases are alternative names the user is known by (maiden names,
	// nicknames, previous legal names).
	Aliases []string `json:"aliases,omitempty"`

	// Emails are the user's known email addresses.
	Emails []string `json:"emails,omitempty"`

	// Phones are the user's known phone numbers in E.164 or national format.
	Phones []string `json:"phones,omitempty"`

	// Addresses are the user's known physical addresses.
	Addresses []Address `json:"addresses,omitempty"`

	// DateOfBirth is in "2006-01-02" format. Empty when unknown or when
	// decryption of the stored field failed.
	DateOfBirth string `json:"date_of_birth,omitempty"`

	// Usernames are handles the user is known by on other services.
	Usernames []string `json:"usernames,omitempty"`
}

// Address is one known physical address. Only City and State are required
// for locality matching; the rest improves match precision when present.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
}

// Names returns the full name plus all aliases, skipping blanks.
func (p IdentityProfile) Names() []string {
	names := make([]string, 0, len(p.Aliases)+1)
	if strings.TrimSpace(p.FullName) != "" {
		names = append(names, p.FullName)
	}
	for _, a := range p.Aliases {
		if strings.TrimSpace(a) != "" {
			names = append(names, a)
		}
	}
	return names
}

// IsEmpty reports whether the profile carries nothing a scanner could search
// for. Scans against empty profiles are rejected before fan-out.
func (p IdentityProfile) IsEmpty() bool {
	return strings.TrimSpace(p.FullName) == "" &&
		len(p.Aliases) == 0 &&
		len(p.Emails) == 0 &&
		len(p.Phones) == 0 &&
		len(p.Addresses) == 0 &&
		len(p.Usernames) == 0
}
