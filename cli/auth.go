package cli

import (
	"fmt"

	"github.com/mvaldes/passguard/vault"
)

const (
	minMasterLen      = 8
	maxUnlockAttempts = 3
)

// SetupMaster runs the first-run flow: prompt for a new master password with
// confirmation, enforce the minimum length, then write the verifier.
func SetupMaster(m *vault.MasterSecret) error {
	ClearScreen()
	printHeader("INITIAL SETUP")
	fmt.Println("\nWelcome to passguard.")
	fmt.Println("Choose a master password; it protects every stored credential.")
	fmt.Println(warnStyle.Render("IMPORTANT: there is no way to recover a forgotten master password."))

	for {
		password := ReadPasswordMasked("\nEnter master password: ")
		confirm := ReadPasswordMasked("Confirm master password: ")

		if string(password) != string(confirm) {
			fmt.Println(errorStyle.Render("Passwords do not match, try again."))
			continue
		}
		if len(password) < minMasterLen {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Password must be at least %d characters.", minMasterLen)))
			continue
		}

		err := m.Setup(string(password))
		vault.Zero(password)
		vault.Zero(confirm)
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Master password configured."))
		return nil
	}
}

// UnlockLoop prompts for the master password, allowing up to three attempts,
// and returns the derived vault key on success.
func UnlockLoop(m *vault.MasterSecret) ([]byte, error) {
	for attempt := 1; attempt <= maxUnlockAttempts; attempt++ {
		password := ReadPasswordMasked("\nEnter master password: ")
		key, ok, err := m.Unlock(string(password))
		vault.Zero(password)
		if err != nil {
			return nil, err
		}
		if ok {
			return key, nil
		}

		remaining := maxUnlockAttempts - attempt
		if remaining > 0 {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Wrong password. Attempts remaining: %d", remaining)))
		}
	}
	return nil, fmt.Errorf("too many failed attempts")
}
