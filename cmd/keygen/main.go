// Package main implements keygen, a helper that generates client API keys
// and the bcrypt hash the server's auth configuration expects.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"

	"github.com/quillback/loglearn/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

// keyBytes gives generated keys 256 bits of entropy.
const keyBytes = 32

func main() {
	key := flag.String("key", "", "hash this key instead of generating a new one")
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Parse()

	if err := run(*key, *cost); err != nil {
		log.Fatalf("keygen: %v", err)
	}
}

func run(key string, cost int) error {
	generated := false
	if key == "" {
		k, err := generateKey()
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		key = k
		generated = true
	}

	hash, err := auth.HashAPIKey(key, cost)
	if err != nil {
		return fmt.Errorf("failed to hash key: %w", err)
	}

	if generated {
		fmt.Printf("API key:  %s\n", key)
	}
	fmt.Printf("Key hash: %s\n", hash)
	fmt.Println()
	fmt.Println("Set LOGLEARN_AUTH_API_KEY_HASH to the hash and hand the key to the client.")
	return nil
}

// generateKey returns a URL-safe random key.
func generateKey() (string, error) {
	b := make([]byte, keyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
