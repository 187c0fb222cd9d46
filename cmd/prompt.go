package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/illarion/applock/internal/crypto"
	"golang.org/x/term"
)

// EnvPIN names the environment variable checked before prompting
const EnvPIN = "APPLOCK_PIN"

// ReadPIN reads a PIN from the terminal without echoing
func ReadPIN(prompt string) ([]byte, error) {
	fmt.Print(prompt)

	pin, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()

	if err != nil {
		return nil, fmt.Errorf("failed to read PIN: %w", err)
	}
	return pin, nil
}

// ReadPINConfirm reads a PIN twice and ensures they match
func ReadPINConfirm(prompt string) ([]byte, error) {
	pin1, err := ReadPIN(prompt)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(pin1)

	pin2, err := ReadPIN("Confirm PIN: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(pin2)

	if !crypto.ConstantTimeCompare(pin1, pin2) {
		return nil, fmt.Errorf("PINs do not match")
	}

	result := make([]byte, len(pin1))
	copy(result, pin1)
	return result, nil
}

// PINFromEnv returns a copy of EnvPIN, or nil when unset
func PINFromEnv() []byte {
	pin := os.Getenv(EnvPIN)
	if pin == "" {
		return nil
	}
	return []byte(pin)
}

// GetPIN returns the PIN from the environment or prompts for it.
// The caller is responsible for calling crypto.ClearBytes on the result.
func GetPIN(prompt string) ([]byte, error) {
	if pin := PINFromEnv(); pin != nil {
		return pin, nil
	}
	return ReadPIN(prompt)
}

// GetNewPIN is GetPIN with confirmation when prompting
func GetNewPIN(prompt string) ([]byte, error) {
	if pin := PINFromEnv(); pin != nil {
		return pin, nil
	}
	return ReadPINConfirm(prompt)
}

// Confirm asks a yes/no question on stdin. Anything but y or yes is no.
func Confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
