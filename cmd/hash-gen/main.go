package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"property-registry.backend/pkg/crypto"
)

var (
	printfFn       = fmt.Printf
	generateHashFn = generateHash
	fatalfFn       = log.Fatalf
	getenvFn       = os.Getenv
)

var errNoPassword = errors.New("usage: hash-gen <password> (or set OPERATOR_PASSWORD)")

// resolvePassword prefers the first argument over OPERATOR_PASSWORD
func resolvePassword(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if password := getenvFn("OPERATOR_PASSWORD"); password != "" {
		return password, nil
	}
	return "", errNoPassword
}

func generateHash(password string) (string, error) {
	return crypto.HashPassword(password)
}

func main() {
	password, err := resolvePassword(os.Args[1:])
	if err != nil {
		fatalfFn("%v", err)
		return
	}

	hash, err := generateHashFn(password)
	if err != nil {
		fatalfFn("Failed to hash password: %v", err)
		return
	}

	printfFn("OPERATOR_PASSWORD_HASH=%s\n", hash)
}
