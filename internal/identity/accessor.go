package identity

import (
	"errors"
	"log/slog"

	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// ErrEmptyProfile is returned when decryption leaves nothing a scanner could
// search for. Running a scan against an empty profile would waste every
// scanner invocation.
var ErrEmptyProfile = errors.New("identity profile is empty after decryption")

// Decryptor decrypts one stored profile field. Implementations live with the
// encryption-at-rest layer; the pipeline only ever calls Decrypt.
type Decryptor interface {
	// Decrypt returns the plaintext for one encrypted field value.
	Decrypt(ciphertext []byte) (string, error)
}

// StoredProfile is the encrypted at-rest shape of a user profile, as handed
// over by the persistence layer. Every field value is independently
// encrypted so a partial key compromise exposes at most single fields.
type StoredProfile struct {
	UserID      string
	FullName    []byte
	Aliases     [][]byte
	Emails      [][]byte
	Phones      [][]byte
	Streets     [][]byte
	Cities      [][]byte
	States      [][]byte
	ZipCodes    [][]byte
	DateOfBirth []byte
	Usernames   [][]byte
}

// Accessor builds IdentityProfile snapshots from stored profiles.
type Accessor struct {
	decryptor Decryptor
	logger    *slog.Logger
}

// AccessorOption configures an Accessor.
type AccessorOption func(*Accessor)

// WithLogger sets a custom logger for the accessor.
func WithLogger(logger *slog.Logger) AccessorOption {
	return func(a *Accessor) {
		a.logger = logger
	}
}

// NewAccessor creates an Accessor over the given decryptor.
func NewAccessor(d Decryptor, opts ...AccessorOption) *Accessor {
	a := &Accessor{
		decryptor: d,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Snapshot decrypts a stored profile into the immutable scan input.
//
// Each field is decrypted independently; a field that fails to decrypt is
// logged (field name only, never content) and dropped, so one corrupt field
// never aborts the whole scan. Snapshot fails only when nothing searchable
// survives decryption.
func (a *Accessor) Snapshot(stored StoredProfile) (model.IdentityProfile, error) {
	profile := model.IdentityProfile{
		FullName:    a.field(stored.FullName, "full_name"),
		Aliases:     a.fields(stored.Aliases, "aliases"),
		Emails:      a.fields(stored.Emails, "emails"),
		Phones:      a.fields(stored.Phones, "phones"),
		DateOfBirth: a.field(stored.DateOfBirth, "date_of_birth"),
		Usernames:   a.fields(stored.Usernames, "usernames"),
	}

	// Address components are positional: the i-th street, city, state,
	// and zip belong together. A failed component leaves that slot empty
	// rather than shifting later addresses.
	n := max(len(stored.Streets), len(stored.Cities), len(stored.States), len(stored.ZipCodes))
	for i := range n {
		addr := model.Address{
			Street:  a.fieldAt(stored.Streets, i, "street"),
			City:    a.fieldAt(stored.Cities, i, "city"),
			State:   a.fieldAt(stored.States, i, "state"),
			ZipCode: a.fieldAt(stored.ZipCodes, i, "zip_code"),
		}
		if addr != (model.Address{}) {
			profile.Addresses = append(profile.Addresses, addr)
		}
	}

	if profile.IsEmpty() {
		return model.IdentityProfile{}, ErrEmptyProfile
	}

	return profile, nil
}

// field decrypts one optional field, returning "" on absence or failure.
func (a *Accessor) field(ciphertext []byte, name string) string {
	if len(ciphertext) == 0 {
		return ""
	}
	plain, err := a.decryptor.Decrypt(ciphertext)
	if err != nil {
		a.logger.Warn("field decryption failed, treating as absent",
			"field", name,
			"error", err,
		)
		return ""
	}
	return plain
}

// fields decrypts a field list, dropping values that fail.
func (a *Accessor) fields(ciphertexts [][]byte, name string) []string {
	var out []string
	for _, ct := range ciphertexts {
		if v := a.field(ct, name); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// fieldAt decrypts the i-th value of a field list, tolerating short lists.
func (a *Accessor) fieldAt(ciphertexts [][]byte, i int, name string) string {
	if i >= len(ciphertexts) {
		return ""
	}
	return a.field(ciphertexts[i], name)
}
