package crypto

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	blob, err := EncryptKey("mf-key-abc123", "hunter2")
	if err != nil {
		t.Fatalf("EncryptKey: %v", err)
	}

	got, err := DecryptKey(blob, "hunter2")
	if err != nil {
		t.Fatalf("DecryptKey: %v", err)
	}
	if got != "mf-key-abc123" {
		t.Fatalf("got %q, want %q", got, "mf-key-abc123")
	}
}

func TestDecryptWrongPassword(t *testing.T) {
	blob, err := EncryptKey("mf-key-abc123", "hunter2")
	if err != nil {
		t.Fatalf("EncryptKey: %v", err)
	}

	if _, err := DecryptKey(blob, "not-the-password"); err == nil {
		t.Fatal("expected error for wrong password")
	}
}

func TestEncryptKeyEmptyInputs(t *testing.T) {
	if _, err := EncryptKey("", "hunter2"); err == nil {
		t.Fatal("expected error for empty key")
	}
	if _, err := EncryptKey("mf-key", ""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestDecryptUnsupportedVersion(t *testing.T) {
	blob := []byte(`{"version":2,"salt":"","nonce":"","ciphertext":""}`)
	_, err := DecryptKey(blob, "hunter2")
	if err == nil || !strings.Contains(err.Error(), "unsupported version") {
		t.Fatalf("got %v, want unsupported version error", err)
	}
}

func TestLoadKey(t *testing.T) {
	// Raw key wins over everything else.
	got, err := LoadKey(KeyConfig{RawKey: "mf-raw"})
	if err != nil {
		t.Fatalf("LoadKey raw: %v", err)
	}
	if got != "mf-raw" {
		t.Fatalf("got %q, want %q", got, "mf-raw")
	}

	// Encrypted file path.
	blob, err := EncryptKey("mf-from-file", "pw")
	if err != nil {
		t.Fatalf("EncryptKey: %v", err)
	}
	path := filepath.Join(t.TempDir(), "key.json")
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err = LoadKey(KeyConfig{EncryptedKeyPath: path, KeyPassword: "pw"})
	if err != nil {
		t.Fatalf("LoadKey encrypted: %v", err)
	}
	if got != "mf-from-file" {
		t.Fatalf("got %q, want %q", got, "mf-from-file")
	}

	// Nothing configured.
	if _, err := LoadKey(KeyConfig{}); err == nil {
		t.Fatal("expected error for empty config")
	}
}
