package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

const (
	VerifierFile = "master.key"
	StoreFile    = "passwords.db"
)

// DataDir resolves ~/.passguard, creating it with owner-only permissions.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(home, ".passguard")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}

	return dir, nil
}

func ClearScreen() {
	fmt.Print("\033[2J\033[H")
}

func ReadLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func ReadPasswordMasked(prompt string) []byte {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	state, _ := term.MakeRaw(fd)
	defer term.Restore(fd, state)

	var input []rune
	for {
		var buf [1]byte
		os.Stdin.Read(buf[:])
		c := buf[0]

		switch c {
		case 13, 10: // Enter
			fmt.Println()
			return []byte(string(input))
		case 127, 8: // Backspace
			if len(input) > 0 {
				input = input[:len(input)-1]
				fmt.Print("\b \b")
			}
		default:
			r, _ := utf8.DecodeRune(buf[:])
			input = append(input, r)
			fmt.Print("*")
		}
	}
}

// ReadOption prompts until the user enters a number within [min, max].
func ReadOption(reader *bufio.Reader, prompt string, min, max int) int {
	for {
		line := ReadLine(reader, prompt)
		var option int
		if _, err := fmt.Sscanf(line, "%d", &option); err == nil && option >= min && option <= max {
			return option
		}
		fmt.Println(errorStyle.Render("Invalid option, try again."))
	}
}

func pause(reader *bufio.Reader) {
	fmt.Print("\nPress Enter to continue...")
	reader.ReadString('\n')
}
