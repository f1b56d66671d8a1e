// Command hashpw prints the bcrypt hash of a password, ready to be used as
// the AUTH_PASSWORD setting of the journal server.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/johnsonjew/learning-journal/internal/server/auth"
	"golang.org/x/term"
)

// test seams for the terminal
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

var (
	errEmptyPassword = errors.New("password must not be empty")
	errMismatch      = errors.New("passwords do not match")
)

func main() {
	if err := run(os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run reads the password from the terminal twice without echo, or once from
// piped stdin, and writes its hash to out. Prompts go to prompt.
func run(in *os.File, out, prompt io.Writer) error {
	var password []byte
	var err error

	if isTerminal(int(in.Fd())) {
		password, err = promptTwice(int(in.Fd()), prompt)
	} else {
		password, err = readLine(in)
	}
	if err != nil {
		return err
	}
	if len(password) == 0 {
		return errEmptyPassword
	}

	hash, err := auth.HashPassword(string(password))
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	_, err = fmt.Fprintln(out, hash)
	return err
}

func promptTwice(fd int, w io.Writer) ([]byte, error) {
	first, err := promptPassword(fd, w, "Enter password: ")
	if err != nil {
		return nil, err
	}
	second, err := promptPassword(fd, w, "Repeat password: ")
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(first, second) {
		return nil, errMismatch
	}
	return first, nil
}

func promptPassword(fd int, w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

func readLine(r io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyPassword
		}
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
