package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rank127/datascrub-pro-sub004/internal/identity"
)

// NewProfileCmd creates the profile command group.
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage encrypted identity profiles",
		Long: `Profile manages the identity data scanners search for.

Every field is encrypted before it touches the database, and decrypted
values exist only for the duration of a scan. Profile data never appears
in log output.`,
	}

	cmd.AddCommand(newProfileSetCmd())
	cmd.AddCommand(newProfileShowCmd())

	return cmd
}

// newProfileSetCmd creates the profile set subcommand.
func newProfileSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or replace a user's identity profile",
		Long: `Set encrypts the given identity fields and stores them for the user,
replacing any existing profile.

Examples:
  datascrub profile set --user jane --name "Jane Doe" --email jane@example.com

  datascrub profile set --user jane --name "Jane Doe" \
    --email jane@example.com --email jane.doe@work.com \
    --phone "+1 555 123 4567" --city Portland --state OR`,
		RunE: runProfileSetCmd,
	}

	cmd.Flags().StringP("user", "u", "", "User ID (required)")
	cmd.Flags().StringP("name", "n", "", "Full name (required)")
	cmd.Flags().StringSlice("alias", nil, "Alternate name (repeatable)")
	cmd.Flags().StringSlice("email", nil, "Email address (repeatable)")
	cmd.Flags().StringSlice("phone", nil, "Phone number (repeatable)")
	cmd.Flags().StringSlice("street", nil, "Street address (repeatable)")
	cmd.Flags().StringSlice("city", nil, "City (repeatable)")
	cmd.Flags().StringSlice("state", nil, "State or region (repeatable)")
	cmd.Flags().StringSlice("zip", nil, "ZIP or postal code (repeatable)")
	cmd.Flags().String("dob", "", "Date of birth (YYYY-MM-DD)")
	cmd.Flags().StringSlice("username", nil, "Online username (repeatable)")

	for _, name := range []string{"user", "name"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	return cmd
}

// runProfileSetCmd executes the profile set subcommand.
func runProfileSetCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Verbose)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	cipher, err := loadCipher(cfg)
	if err != nil {
		return err
	}

	userID, err := cmd.Flags().GetString("user")
	if err != nil {
		return err
	}

	stored := identity.StoredProfile{UserID: userID}

	// Single-value fields
	singles := []struct {
		flag string
		dst  *[]byte
	}{
		{"name", &stored.FullName},
		{"dob", &stored.DateOfBirth},
	}
	for _, s := range singles {
		value, err := cmd.Flags().GetString(s.flag)
		if err != nil {
			return err
		}
		if value == "" {
			continue
		}
		*s.dst, err = cipher.Encrypt(value)
		if err != nil {
			return fmt.Errorf("failed to encrypt %s: %w", s.flag, err)
		}
	}

	// Repeatable fields
	multis := []struct {
		flag string
		dst  *[][]byte
	}{
		{"alias", &stored.Aliases},
		{"email", &stored.Emails},
		{"phone", &stored.Phones},
		{"street", &stored.Streets},
		{"city", &stored.Cities},
		{"state", &stored.States},
		{"zip", &stored.ZipCodes},
		{"username", &stored.Usernames},
	}
	for _, m := range multis {
		values, err := cmd.Flags().GetStringSlice(m.flag)
		if err != nil {
			return err
		}
		for _, value := range values {
			if value == "" {
				continue
			}
			ciphertext, err := cipher.Encrypt(value)
			if err != nil {
				return fmt.Errorf("failed to encrypt %s: %w", m.flag, err)
			}
			*m.dst = append(*m.dst, ciphertext)
		}
	}

	if err := store.SaveProfile(cmd.Context(), stored); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	logger.Debug("profile saved", "user", userID)
	fmt.Fprintf(cmd.OutOrStdout(), "Profile saved for user %s\n", userID)
	return nil
}

// newProfileShowCmd creates the profile show subcommand. It reports which
// fields are populated without ever decrypting them.
func newProfileShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show which profile fields are populated",
		Long: `Show lists the fields stored for a user without decrypting any of them.

Use it to verify what a scan will search on. Plaintext values are only
ever reconstructed inside a running scan.`,
		RunE: runProfileShowCmd,
	}

	cmd.Flags().StringP("user", "u", "", "User ID (required)")
	if err := cmd.MarkFlagRequired("user"); err != nil {
		panic(err)
	}

	return cmd
}

// runProfileShowCmd executes the profile show subcommand.
func runProfileShowCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	setupLogger(cfg.Verbose)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	userID, err := cmd.Flags().GetString("user")
	if err != nil {
		return err
	}

	stored, err := store.LoadProfile(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Profile for user %s (values encrypted at rest):\n", userID)
	fmt.Fprintf(out, "  full name:     %s\n", presence(len(stored.FullName) > 0))
	fmt.Fprintf(out, "  aliases:       %d\n", len(stored.Aliases))
	fmt.Fprintf(out, "  emails:        %d\n", len(stored.Emails))
	fmt.Fprintf(out, "  phones:        %d\n", len(stored.Phones))
	fmt.Fprintf(out, "  streets:       %d\n", len(stored.Streets))
	fmt.Fprintf(out, "  cities:        %d\n", len(stored.Cities))
	fmt.Fprintf(out, "  states:        %d\n", len(stored.States))
	fmt.Fprintf(out, "  zip codes:     %d\n", len(stored.ZipCodes))
	fmt.Fprintf(out, "  date of birth: %s\n", presence(len(stored.DateOfBirth) > 0))
	fmt.Fprintf(out, "  usernames:     %d\n", len(stored.Usernames))
	return nil
}

func presence(set bool) string {
	if set {
		return "set"
	}
	return "not set"
}
