package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/electrowallet/electrowallet/internal/wallet"
)

// stdin is shared by prompts so buffered input is not lost between them.
var stdin = bufio.NewReader(os.Stdin)

// keystoreSecrets is a wallet.SecretStore backed by the encrypted keystore.
// The password is only asked for when a secret is first touched, so
// read-only commands never prompt.
type keystoreSecrets struct {
	dir      string
	params   wallet.EncryptionParams
	password func(confirm bool) ([]byte, error)

	once sync.Once
	ks   *wallet.Keystore
	err  error
}

func newKeystoreSecrets(dir string) *keystoreSecrets {
	return &keystoreSecrets{
		dir:      dir,
		params:   wallet.DefaultParams(),
		password: promptPassword,
	}
}

func (k *keystoreSecrets) open() (*wallet.Keystore, error) {
	k.once.Do(func() {
		// A fresh keystore gets a confirmed password.
		existing, err := wallet.ListKeystore(k.dir)
		if err != nil {
			k.err = err
			return
		}
		password, err := k.password(len(existing) == 0)
		if err != nil {
			k.err = err
			return
		}
		k.ks, k.err = wallet.NewKeystore(k.dir, password, k.params)
		clear(password)
	})
	return k.ks, k.err
}

func (k *keystoreSecrets) Save(address string, secret wallet.Secret) error {
	ks, err := k.open()
	if err != nil {
		return err
	}
	return ks.Save(address, secret)
}

func (k *keystoreSecrets) Load(address string) (wallet.Secret, error) {
	ks, err := k.open()
	if err != nil {
		return wallet.Secret{}, err
	}
	return ks.Load(address)
}

func (k *keystoreSecrets) Delete(address string) error {
	ks, err := k.open()
	if err != nil {
		return err
	}
	return ks.Delete(address)
}

// promptPassword reads the keystore password, hidden when stdin is a
// terminal. With confirm set it is asked for twice.
func promptPassword(confirm bool) ([]byte, error) {
	password, err := readPassword("Enter wallet password: ")
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	if len(password) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	if confirm {
		again, err := readPassword("Confirm password: ")
		if err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		defer clear(again)
		if string(password) != string(again) {
			clear(password)
			return nil, errors.New("passwords do not match")
		}
	}
	return password, nil
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := stdin.ReadString('\n')
		if err != nil && line == "" {
			return nil, err
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}
