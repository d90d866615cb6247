package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/existflow/eisenhower/internal/auth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your account",
	Long: `Manage your account. Each account has its own task collection.

With auth_mode 'local' accounts live in the local store; with 'remote'
they live on the server at server_url.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE:  runRegister,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Request a password reset token",
	RunE:  runReset,
}

var confirmCmd = &cobra.Command{
	Use:   "confirm [token]",
	Short: "Set a new password with a reset token",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfirm,
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade to the pro plan",
	RunE:  runUpgrade,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE:  runWhoami,
}

var (
	authEmail string
	authName  string
)

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(resetCmd)
	authCmd.AddCommand(confirmCmd)
	authCmd.AddCommand(upgradeCmd)
	authCmd.AddCommand(whoamiCmd)

	authCmd.PersistentFlags().StringVar(&authEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&authName, "name", "", "Display name")
}

// prompter reads answers from the command input
type prompter struct {
	cmd *cobra.Command
	in  *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{cmd: cmd, in: bufio.NewReader(cmd.InOrStdin())}
}

func (p *prompter) line(label, preset string) string {
	if preset != "" {
		return preset
	}
	fmt.Fprint(p.cmd.OutOrStdout(), label)
	s, _ := p.in.ReadString('\n')
	return strings.TrimSpace(s)
}

// secret reads without echo on a terminal, and a plain line otherwise
func (p *prompter) secret(label string) string {
	fmt.Fprint(p.cmd.OutOrStdout(), label)
	if f, ok := p.cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, _ := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.cmd.OutOrStdout())
		return string(b)
	}
	s, _ := p.in.ReadString('\n')
	return strings.TrimRight(s, "\r\n")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := openAuth(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p := newPrompter(cmd)
	email := p.line("Email: ", authEmail)
	password := p.secret("Password: ")

	fmt.Fprintln(cmd.OutOrStdout(), "🔄 Logging in...")
	user, err := a.provider.Login(cmd.Context(), email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Logged in as %s\n", user.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := openAuth(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	err = a.provider.Logout(cmd.Context())
	if errors.Is(err, auth.ErrNotLoggedIn) {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✅ Logged out successfully.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := openAuth(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p := newPrompter(cmd)
	email := p.line("Email: ", authEmail)
	name := p.line("Name: ", authName)
	password := p.secret("Password: ")
	confirmation := p.secret("Confirm Password: ")

	if password != confirmation {
		return fmt.Errorf("passwords do not match")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "🔄 Creating account...")
	user, err := a.provider.Register(cmd.Context(), email, name, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Account created and logged in as %s\n", user.Email)
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	a, err := openAuth(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	email := newPrompter(cmd).line("Email: ", authEmail)
	token, err := a.provider.ResetPassword(cmd.Context(), email)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "📬 Password reset requested. The token is valid for 15 minutes.")
	if token != "" {
		fmt.Fprintf(out, "🔑 Reset token: %s\n", token)
		fmt.Fprintf(out, "Run: eisenhower auth confirm %s\n", token)
	}
	return nil
}

func runConfirm(cmd *cobra.Command, args []string) error {
	a, err := openAuth(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p := newPrompter(cmd)
	password := p.secret("New Password: ")
	confirmation := p.secret("Confirm Password: ")
	if password != confirmation {
		return fmt.Errorf("passwords do not match")
	}

	if err := a.provider.ConfirmReset(cmd.Context(), args[0], password); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✅ Password changed. Log in with: eisenhower auth login")
	return nil
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	a, err := openAuth(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.provider.UpgradeAccount(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "⭐ %s is now on the %s plan\n", user.Email, user.Plan)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := openAuth(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.provider.CurrentUser(cmd.Context())
	if errors.Is(err, auth.ErrNotLoggedIn) {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Email:   %s\n", user.Email)
	fmt.Fprintf(out, "Name:    %s\n", user.Name)
	fmt.Fprintf(out, "Plan:    %s\n", user.Plan)
	fmt.Fprintf(out, "Since:   %s\n", user.CreatedAt.Format("2006-01-02"))
	if user.LastLogin != nil {
		fmt.Fprintf(out, "Last in: %s\n", user.LastLogin.Format("2006-01-02 15:04"))
	}
	return nil
}
