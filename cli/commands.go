package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mvaldes/passguard/vault"
)

// Run drives the main menu loop until the user quits.
func Run(v *vault.Vault, m *vault.MasterSecret, storePath string) {
	reader := bufio.NewReader(os.Stdin)

	for {
		ClearScreen()
		printHeader("PASSGUARD")
		fmt.Println()
		printMenu([]string{
			"Add credential",
			"List stored credentials",
			"Search by service",
			"Browse (interactive)",
			"Delete credential",
			"Change master password",
			"Quit",
		})

		switch ReadOption(reader, "\nSelect an option: ", 1, 7) {
		case 1:
			handleAdd(v, reader)
		case 2:
			handleList(v, reader)
		case 3:
			handleSearch(v, reader)
		case 4:
			RunBrowser(v)
		case 5:
			handleDelete(v, reader)
		case 6:
			handleChangeMaster(v, m, storePath, reader)
		case 7:
			ClearScreen()
			fmt.Println("Goodbye.")
			return
		}
	}
}

func handleAdd(v *vault.Vault, reader *bufio.Reader) {
	ClearScreen()
	printHeader("ADD CREDENTIAL")
	fmt.Println()

	service := ReadLine(reader, "Service: ")
	username := ReadLine(reader, "Username or email: ")
	password := ReadPasswordMasked("Password: ")
	confirm := ReadPasswordMasked("Confirm password: ")

	if string(password) != string(confirm) {
		fmt.Println(errorStyle.Render("Passwords do not match."))
		vault.Zero(password)
		vault.Zero(confirm)
		pause(reader)
		return
	}

	err := v.Add(service, username, string(password))
	vault.Zero(password)
	vault.Zero(confirm)
	if err != nil {
		fmt.Println(errorStyle.Render("Error saving credential: " + err.Error()))
	} else {
		fmt.Println(successStyle.Render(fmt.Sprintf("Credential for %q saved.", service)))
	}
	pause(reader)
}

func handleList(v *vault.Vault, reader *bufio.Reader) {
	for {
		ClearScreen()
		printHeader("STORED CREDENTIALS")
		fmt.Println()

		creds, err := v.All()
		if err != nil {
			fmt.Println(errorStyle.Render("Error reading vault: " + err.Error()))
			pause(reader)
			return
		}
		if len(creds) == 0 {
			fmt.Println("No credentials stored yet.")
			pause(reader)
			return
		}

		printCredTable(creds)
		fmt.Println("\nSelect a number for details, or 0 to go back")
		option := ReadOption(reader, ": ", 0, len(creds))
		if option == 0 {
			return
		}
		showDetail(creds[option-1], reader)
	}
}

func handleSearch(v *vault.Vault, reader *bufio.Reader) {
	ClearScreen()
	printHeader("SEARCH BY SERVICE")
	fmt.Println()

	query := ReadLine(reader, "Service name to search for: ")
	creds, err := v.Search(query)
	if err != nil {
		fmt.Println(errorStyle.Render("Error searching vault: " + err.Error()))
		pause(reader)
		return
	}
	if len(creds) == 0 {
		fmt.Printf("No results for %q.\n", query)
		pause(reader)
		return
	}

	fmt.Printf("\nFound %d result(s):\n", len(creds))
	printCredTable(creds)
	fmt.Println("\nSelect a number for details, or 0 to go back")
	option := ReadOption(reader, ": ", 0, len(creds))
	if option != 0 {
		showDetail(creds[option-1], reader)
	}
}

func handleDelete(v *vault.Vault, reader *bufio.Reader) {
	ClearScreen()
	printHeader("DELETE CREDENTIAL")
	fmt.Println()

	creds, err := v.All()
	if err != nil {
		fmt.Println(errorStyle.Render("Error reading vault: " + err.Error()))
		pause(reader)
		return
	}
	if len(creds) == 0 {
		fmt.Println("No credentials stored yet.")
		pause(reader)
		return
	}

	printCredTable(creds)
	fmt.Println("\nSelect a number to delete, or 0 to cancel")
	option := ReadOption(reader, ": ", 0, len(creds))
	if option == 0 {
		return
	}

	cred := creds[option-1]
	answer := ReadLine(reader, fmt.Sprintf("\nDelete the credential for %q (%s)? (y/n): ", cred.Service, cred.Username))
	if strings.ToLower(answer) != "y" {
		return
	}

	deleted, err := v.Delete(cred.Service, cred.Username)
	switch {
	case err != nil:
		fmt.Println(errorStyle.Render("Error deleting credential: " + err.Error()))
	case deleted:
		fmt.Println(successStyle.Render("Credential deleted."))
	default:
		fmt.Println(errorStyle.Render("Credential not found."))
	}
	pause(reader)
}

// handleChangeMaster rotates the master password. The store file is backed
// up before the verifier is rewritten: if re-encryption fails after that
// point the old ciphertext is unreadable under the new verifier, and the
// backup is the only way back.
func handleChangeMaster(v *vault.Vault, m *vault.MasterSecret, storePath string, reader *bufio.Reader) {
	ClearScreen()
	printHeader("CHANGE MASTER PASSWORD")
	fmt.Println()

	current := ReadPasswordMasked("Current master password: ")
	ok, err := m.Verify(string(current))
	if err != nil {
		vault.Zero(current)
		fmt.Println(errorStyle.Render("Error verifying password: " + err.Error()))
		pause(reader)
		return
	}
	if !ok {
		vault.Zero(current)
		fmt.Println(errorStyle.Render("Wrong password."))
		pause(reader)
		return
	}

	newPassword := ReadPasswordMasked("New master password: ")
	confirm := ReadPasswordMasked("Confirm new master password: ")
	defer func() {
		vault.Zero(current)
		vault.Zero(newPassword)
		vault.Zero(confirm)
	}()

	if string(newPassword) != string(confirm) {
		fmt.Println(errorStyle.Render("Passwords do not match."))
		pause(reader)
		return
	}
	if len(newPassword) < minMasterLen {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Password must be at least %d characters.", minMasterLen)))
		pause(reader)
		return
	}

	backupPath, err := backupStore(storePath)
	if err != nil {
		fmt.Println(errorStyle.Render("Error backing up store: " + err.Error()))
		pause(reader)
		return
	}

	newKey, err := m.Rotate(string(current), string(newPassword))
	if err != nil {
		fmt.Println(errorStyle.Render("Error rotating master password: " + err.Error()))
		pause(reader)
		return
	}

	err = v.Rekey(newKey)
	vault.Zero(newKey)
	if err != nil {
		fmt.Println(errorStyle.Render("Error re-encrypting store: " + err.Error()))
		if backupPath != "" {
			fmt.Println(warnStyle.Render("The verifier was already rotated; restore the store from " + backupPath +
				" and the old master password before retrying."))
		}
		pause(reader)
		return
	}

	if backupPath != "" {
		os.Remove(backupPath)
	}
	fmt.Println(successStyle.Render("Master password changed."))
	pause(reader)
}

// backupStore copies the store file next to itself with a unique suffix.
// Returns "" when there is nothing to back up yet.
func backupStore(storePath string) (string, error) {
	src, err := os.Open(storePath)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer src.Close()

	backupPath := storePath + ".bak-" + uuid.NewString()
	dst, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(backupPath)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(backupPath)
		return "", err
	}
	return backupPath, nil
}

func printCredTable(creds []vault.Credential) {
	fmt.Printf("%s\n", labelStyle.Render(fmt.Sprintf("%-4s %-20s %-25s %-12s", "#", "Service", "Username", "Date")))
	fmt.Println(strings.Repeat("-", 62))
	for i, cred := range creds {
		fmt.Printf("%-4d %-20s %-25s %-12s\n", i+1, cred.Service, cred.Username, cred.Date)
	}
}

func showDetail(cred vault.Credential, reader *bufio.Reader) {
	ClearScreen()
	printHeader("DETAILS - " + strings.ToUpper(cred.Service))
	fmt.Println()
	fmt.Printf("%s %s\n", labelStyle.Render("Service:"), cred.Service)
	fmt.Printf("%s %s\n", labelStyle.Render("Username:"), cred.Username)
	fmt.Printf("%s %s\n", labelStyle.Render("Password:"), cred.Password)
	fmt.Printf("%s %s\n", labelStyle.Render("Created:"), cred.Date)
	pause(reader)
}
