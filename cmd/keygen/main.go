// Keygen generates a fresh Solana keypair and prints the secret in the
// JSON-array form accepted by wallet onboarding, plus the public address.
// Usage: go run ./cmd/keygen [count]
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
)

func main() {
	count := 1
	if len(os.Args) > 1 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n < 1 {
			fmt.Fprintln(os.Stderr, "count must be a positive integer")
			os.Exit(1)
		}
		count = n
	}

	for i := 0; i < count; i++ {
		w := solana.NewWallet()
		fmt.Printf("address: %s\n", w.PublicKey())
		fmt.Printf("secret:  %s\n", secretArray(w.PrivateKey))
	}
}

func secretArray(key solana.PrivateKey) string {
	parts := make([]string, len(key))
	for i, b := range key {
		parts[i] = strconv.Itoa(int(b))
	}
	return "[" + strings.Join(parts, ",") + "]"
}
