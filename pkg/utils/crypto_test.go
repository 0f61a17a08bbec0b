package utils

import "testing"

var cryptoKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := "EAABsbCS1iHgBA-long-lived-meta-token"

	encrypted, err := Encrypt([]byte(plaintext), cryptoKey)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if encrypted == plaintext {
		t.Fatal("ciphertext equals plaintext")
	}

	decrypted, err := Decrypt(encrypted, cryptoKey)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if decrypted != plaintext {
		t.Errorf("got %q, want %q", decrypted, plaintext)
	}
}

func TestEncryptProducesFreshNonce(t *testing.T) {
	first, err := Encrypt([]byte("same input"), cryptoKey)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	second, err := Encrypt([]byte("same input"), cryptoKey)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if first == second {
		t.Fatal("two encryptions of the same input produced identical ciphertext")
	}
}

func TestDecryptWrongKey(t *testing.T) {
	encrypted, err := Encrypt([]byte("secret"), cryptoKey)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	otherKey := []byte("fedcba9876543210fedcba9876543210")
	if _, err := Decrypt(encrypted, otherKey); err == nil {
		t.Fatal("expected decryption to fail with the wrong key")
	}
}

func TestDecryptTruncatedInput(t *testing.T) {
	if _, err := Decrypt("aGVsbG8=", cryptoKey); err == nil {
		t.Fatal("expected decryption to fail on input shorter than the nonce")
	}
}

func TestEncryptBadKeyLength(t *testing.T) {
	if _, err := Encrypt([]byte("data"), []byte("short")); err == nil {
		t.Fatal("expected an error for an invalid key length")
	}
}
