package wallet

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const testAddr = "mkHS9ne12qx9pS9VojpwU5xtRd4T7X7ZUt"

func testKeystore(t *testing.T, password string) (*Keystore, string) {
	t.Helper()
	dir := t.TempDir()
	ks, err := NewKeystore(dir, []byte(password), fastParams())
	if err != nil {
		t.Fatalf("NewKeystore() error: %v", err)
	}
	return ks, dir
}

func testSecret() Secret {
	return Secret{PrivateKey: bytes.Repeat([]byte{0x42}, 32), Mnemonic: testMnemonic12}
}

// Both implementations must behave the same way.
func secretStores(t *testing.T) map[string]SecretStore {
	ks, _ := testKeystore(t, "test-password")
	return map[string]SecretStore{
		"memory":   NewMemorySecretStore(),
		"keystore": ks,
	}
}

func TestSecretStore_SaveLoadDelete(t *testing.T) {
	for name, store := range secretStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Load(testAddr); !errors.Is(err, ErrSecretNotFound) {
				t.Fatalf("Load() before Save error = %v, want ErrSecretNotFound", err)
			}

			want := testSecret()
			if err := store.Save(testAddr, want); err != nil {
				t.Fatalf("Save() error: %v", err)
			}
			got, err := store.Load(testAddr)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if !bytes.Equal(got.PrivateKey, want.PrivateKey) || got.Mnemonic != want.Mnemonic {
				t.Errorf("Load() = %+v, want %+v", got, want)
			}

			if err := store.Delete(testAddr); err != nil {
				t.Fatalf("Delete() error: %v", err)
			}
			if _, err := store.Load(testAddr); !errors.Is(err, ErrSecretNotFound) {
				t.Errorf("Load() after Delete error = %v, want ErrSecretNotFound", err)
			}
			if err := store.Delete(testAddr); err != nil {
				t.Errorf("second Delete() error: %v", err)
			}
		})
	}
}

func TestSecretStore_Overwrite(t *testing.T) {
	for name, store := range secretStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Save(testAddr, testSecret()); err != nil {
				t.Fatalf("Save() error: %v", err)
			}
			replaced := Secret{PrivateKey: []byte{1, 2, 3}, Mnemonic: "other"}
			if err := store.Save(testAddr, replaced); err != nil {
				t.Fatalf("Save() error: %v", err)
			}
			got, err := store.Load(testAddr)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if got.Mnemonic != "other" {
				t.Errorf("Mnemonic = %q, want other", got.Mnemonic)
			}
		})
	}
}

func TestMemorySecretStore_Copies(t *testing.T) {
	store := NewMemorySecretStore()
	s := testSecret()
	if err := store.Save(testAddr, s); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	s.PrivateKey[0] = 0

	got, _ := store.Load(testAddr)
	if got.PrivateKey[0] != 0x42 {
		t.Error("store should not alias the caller's slice")
	}
}

func TestKeystore_WrongPassword(t *testing.T) {
	ks, dir := testKeystore(t, "correct")
	if err := ks.Save(testAddr, testSecret()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	other, err := NewKeystore(dir, []byte("wrong"), fastParams())
	if err != nil {
		t.Fatalf("NewKeystore() error: %v", err)
	}
	if _, err := other.Load(testAddr); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("Load() error = %v, want ErrWrongPassword", err)
	}
}

func TestKeystore_EmptyPassword(t *testing.T) {
	if _, err := NewKeystore(t.TempDir(), nil, fastParams()); err == nil {
		t.Error("NewKeystore() should reject an empty password")
	}
}

func TestKeystore_RejectsPathAddress(t *testing.T) {
	parent := t.TempDir()
	victim := filepath.Join(parent, "victim.wallet")
	if err := os.WriteFile(victim, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	ks, err := NewKeystore(filepath.Join(parent, "keystore"), []byte("pass"), fastParams())
	if err != nil {
		t.Fatalf("NewKeystore() error: %v", err)
	}

	for _, addr := range []string{"../victim", "sub/dir", ""} {
		if err := ks.Save(addr, testSecret()); err == nil {
			t.Errorf("Save(%q) should fail", addr)
		}
		if _, err := ks.Load(addr); err == nil || errors.Is(err, ErrSecretNotFound) {
			t.Errorf("Load(%q) error = %v, want an invalid address error", addr, err)
		}
		if err := ks.Delete(addr); err == nil {
			t.Errorf("Delete(%q) should fail", addr)
		}
	}
	if _, err := os.Stat(victim); err != nil {
		t.Errorf("file outside the keystore was touched: %v", err)
	}
}

func TestKeystore_NoPlaintextOnDisk(t *testing.T) {
	ks, dir := testKeystore(t, "pass")
	if err := ks.Save(testAddr, testSecret()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, testAddr+".wallet"))
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if bytes.Contains(data, []byte("abandon")) {
		t.Error("keystore file contains the plaintext mnemonic")
	}
}

func TestKeystore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced on windows")
	}
	ks, dir := testKeystore(t, "pass")
	if err := ks.Save(testAddr, testSecret()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, testAddr+".wallet"))
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 600", perm)
	}
}

func TestKeystore_List(t *testing.T) {
	ks, dir := testKeystore(t, "pass")
	for _, a := range []string{"addrA", "addrB"} {
		if err := ks.Save(a, testSecret()); err != nil {
			t.Fatalf("Save(%s) error: %v", a, err)
		}
	}
	// Unrelated files are ignored.
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600)

	addrs, err := ks.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(addrs) != 2 {
		t.Errorf("List() = %v, want 2 entries", addrs)
	}
}

func TestListKeystore_MissingDir(t *testing.T) {
	addrs, err := ListKeystore(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("ListKeystore() error: %v", err)
	}
	if len(addrs) != 0 {
		t.Errorf("ListKeystore() = %v, want none", addrs)
	}
}
