package main

// genhash prints the bcrypt hash for the operator password. The output goes
// into ADMIN_PASSWORD_HASH.
//
// Usage: go run ./cmd/genhash 'mi-password'

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "uso: genhash <password>")
		os.Exit(1)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), 12)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(h))
}
