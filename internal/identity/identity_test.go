package identity

import (
	"bytes"
	"errors"
	"testing"
)

func testCipher(t *testing.T) *SecretboxCipher {
	t.Helper()

	key := bytes.Repeat([]byte{0x42}, KeySize)
	c, err := NewSecretboxCipher(key)
	if err != nil {
		t.Fatalf("NewSecretboxCipher() error = %v", err)
	}
	return c
}

func seal(t *testing.T, c *SecretboxCipher, plaintext string) []byte {
	t.Helper()

	ct, err := c.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt(%q) error = %v", plaintext, err)
	}
	return ct
}

// TestSecretboxCipherRoundTrip tests encryption and decryption.
func TestSecretboxCipherRoundTrip(t *testing.T) {
	t.Parallel()

	c := testCipher(t)

	for _, plaintext := range []string{"jane@example.com", "", "Jane Doe", "+15125550143"} {
		ct := seal(t, c, plaintext)
		got, err := c.Decrypt(ct)
		if err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		if got != plaintext {
			t.Errorf("round trip = %q, want %q", got, plaintext)
		}
	}
}

// TestSecretboxCipherFailures tests decryption failure modes.
func TestSecretboxCipherFailures(t *testing.T) {
	t.Parallel()

	c := testCipher(t)

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()

		other, err := NewSecretboxCipher(bytes.Repeat([]byte{0x17}, KeySize))
		if err != nil {
			t.Fatal(err)
		}
		ct := seal(t, c, "secret data")

		if _, err := other.Decrypt(ct); !errors.Is(err, ErrDecryptFailed) {
			t.Errorf("expected ErrDecryptFailed, got %v", err)
		}
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		t.Parallel()

		ct := seal(t, c, "secret data")
		ct[len(ct)-1] ^= 0xFF

		if _, err := c.Decrypt(ct); !errors.Is(err, ErrDecryptFailed) {
			t.Errorf("expected ErrDecryptFailed, got %v", err)
		}
	})

	t.Run("truncated ciphertext", func(t *testing.T) {
		t.Parallel()

		if _, err := c.Decrypt([]byte{1, 2, 3}); !errors.Is(err, ErrDecryptFailed) {
			t.Errorf("expected ErrDecryptFailed, got %v", err)
		}
	})

	t.Run("bad key length", func(t *testing.T) {
		t.Parallel()

		if _, err := NewSecretboxCipher([]byte("short")); err == nil {
			t.Error("expected error for short key")
		}
	})
}

// TestAccessorSnapshot tests full profile decryption.
func TestAccessorSnapshot(t *testing.T) {
	t.Parallel()

	c := testCipher(t)
	accessor := NewAccessor(c)

	stored := StoredProfile{
		UserID:      "user-1",
		FullName:    seal(t, c, "Jane Doe"),
		Aliases:     [][]byte{seal(t, c, "Jane Smith")},
		Emails:      [][]byte{seal(t, c, "jane@example.com"), seal(t, c, "jd@example.org")},
		Phones:      [][]byte{seal(t, c, "+15125550143")},
		Streets:     [][]byte{seal(t, c, "100 Main St")},
		Cities:      [][]byte{seal(t, c, "Austin")},
		States:      [][]byte{seal(t, c, "TX")},
		ZipCodes:    [][]byte{seal(t, c, "78701")},
		DateOfBirth: seal(t, c, "1987-03-14"),
		Usernames:   [][]byte{seal(t, c, "janedoe87")},
	}

	profile, err := accessor.Snapshot(stored)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if profile.FullName != "Jane Doe" {
		t.Errorf("FullName = %q", profile.FullName)
	}
	if len(profile.Emails) != 2 {
		t.Errorf("expected 2 emails, got %d", len(profile.Emails))
	}
	if len(profile.Addresses) != 1 {
		t.Fatalf("expected 1 address, got %d", len(profile.Addresses))
	}
	if profile.Addresses[0].City != "Austin" || profile.Addresses[0].State != "TX" {
		t.Errorf("unexpected address: %+v", profile.Addresses[0])
	}
	if profile.DateOfBirth != "1987-03-14" {
		t.Errorf("DateOfBirth = %q", profile.DateOfBirth)
	}
}

// TestAccessorToleratesFieldFailures tests per-field decrypt tolerance: a
// corrupt field is dropped, the rest of the profile survives.
func TestAccessorToleratesFieldFailures(t *testing.T) {
	t.Parallel()

	c := testCipher(t)
	accessor := NewAccessor(c)

	corrupt := seal(t, c, "corrupted")
	corrupt[len(corrupt)-1] ^= 0xFF

	stored := StoredProfile{
		UserID:   "user-1",
		FullName: corrupt,
		Emails:   [][]byte{seal(t, c, "jane@example.com"), append([]byte{}, corrupt...)},
	}

	profile, err := accessor.Snapshot(stored)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if profile.FullName != "" {
		t.Errorf("corrupt full name should be absent, got %q", profile.FullName)
	}
	if len(profile.Emails) != 1 || profile.Emails[0] != "jane@example.com" {
		t.Errorf("expected the surviving email only, got %v", profile.Emails)
	}
}

// TestAccessorEmptyProfile tests that a fully failed profile is rejected.
func TestAccessorEmptyProfile(t *testing.T) {
	t.Parallel()

	c := testCipher(t)
	accessor := NewAccessor(c)

	if _, err := accessor.Snapshot(StoredProfile{UserID: "user-1"}); !errors.Is(err, ErrEmptyProfile) {
		t.Errorf("expected ErrEmptyProfile, got %v", err)
	}
}

// TestAccessorPositionalAddresses tests that a failed address component
// leaves its slot empty without shifting later addresses.
func TestAccessorPositionalAddresses(t *testing.T) {
	t.Parallel()

	c := testCipher(t)
	accessor := NewAccessor(c)

	corrupt := seal(t, c, "Austin")
	corrupt[0] ^= 0xFF

	stored := StoredProfile{
		UserID: "user-1",
		Cities: [][]byte{corrupt, seal(t, c, "Dallas")},
		States: [][]byte{seal(t, c, "TX"), seal(t, c, "TX")},
	}

	profile, err := accessor.Snapshot(stored)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if len(profile.Addresses) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(profile.Addresses))
	}
	if profile.Addresses[0].City != "" || profile.Addresses[0].State != "TX" {
		t.Errorf("slot 0 = %+v, want empty city with TX", profile.Addresses[0])
	}
	if profile.Addresses[1].City != "Dallas" {
		t.Errorf("slot 1 city = %q, want Dallas", profile.Addresses[1].City)
	}
}
