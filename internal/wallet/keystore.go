package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const keystoreVersion = 1

// keystoreFile is the on-disk JSON format for one encrypted secret.
type keystoreFile struct {
	Version   int       `json:"version"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	Sealed    []byte    `json:"sealed"`
}

// Keystore is a SecretStore that writes one password-encrypted file per
// address into a directory.
type Keystore struct {
	path     string
	password []byte
	params   EncryptionParams
}

// NewKeystore creates a keystore that reads/writes to the given directory.
// The directory is created if it doesn't exist.
func NewKeystore(path string, password []byte, params EncryptionParams) (*Keystore, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("keystore password must not be empty")
	}
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{
		path:     path,
		password: append([]byte(nil), password...),
		params:   params,
	}, nil
}

// secretPath maps address to its file inside the keystore directory.
// Addresses that would escape the directory are rejected.
func (ks *Keystore) secretPath(address string) (string, error) {
	if address == "" || filepath.Base(address) != address {
		return "", fmt.Errorf("invalid keystore address %q", address)
	}
	return filepath.Join(ks.path, address+".wallet"), nil
}

// Save encrypts secret and writes it for address, replacing any existing file.
func (ks *Keystore) Save(address string, secret Secret) error {
	path, err := ks.secretPath(address)
	if err != nil {
		return err
	}
	plain, err := json.Marshal(secret)
	if err != nil {
		return fmt.Errorf("marshal secret: %w", err)
	}
	defer zero(plain)

	sealed, err := Encrypt(plain, ks.password, ks.params)
	if err != nil {
		return fmt.Errorf("encrypt secret: %w", err)
	}

	kf := keystoreFile{
		Version:   keystoreVersion,
		Address:   address,
		CreatedAt: time.Now().UTC(),
		Sealed:    sealed,
	}
	data, err := json.MarshalIndent(&kf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal keystore file: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write keystore file: %w", err)
	}
	return nil
}

// Load decrypts the secret for address.
func (ks *Keystore) Load(address string) (Secret, error) {
	path, err := ks.secretPath(address)
	if err != nil {
		return Secret{}, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Secret{}, ErrSecretNotFound
	}
	if err != nil {
		return Secret{}, fmt.Errorf("read keystore file: %w", err)
	}

	var kf keystoreFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return Secret{}, fmt.Errorf("parse keystore file: %w", err)
	}
	if kf.Version != keystoreVersion {
		return Secret{}, fmt.Errorf("unsupported keystore version: %d", kf.Version)
	}

	plain, err := Decrypt(kf.Sealed, ks.password)
	if err != nil {
		return Secret{}, fmt.Errorf("decrypt secret for %s: %w", address, err)
	}
	defer zero(plain)

	var s Secret
	if err := json.Unmarshal(plain, &s); err != nil {
		return Secret{}, fmt.Errorf("parse secret: %w", err)
	}
	return s, nil
}

// Delete removes the file for address. Missing files are ignored.
func (ks *Keystore) Delete(address string) error {
	path, err := ks.secretPath(address)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete keystore file: %w", err)
	}
	return nil
}

// List returns the addresses that have a keystore file.
func (ks *Keystore) List() ([]string, error) {
	return ListKeystore(ks.path)
}

// ListKeystore returns the addresses stored in dir without decrypting
// anything. A missing directory holds no addresses.
func ListKeystore(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read keystore dir: %w", err)
	}

	var addrs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if ext := filepath.Ext(name); ext == ".wallet" {
			addrs = append(addrs, name[:len(name)-len(ext)])
		}
	}
	return addrs, nil
}
