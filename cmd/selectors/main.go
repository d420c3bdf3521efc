// Command selectors prints the 4-byte selectors of both registry schema
// surfaces, for matching raw calldata and revert payloads against a node log.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
	"property-registry.backend/internal/infrastructure/registry"
)

var revertSignatures = []string{
	"Error(string)",
	"Panic(uint256)",
}

func selector(sig string) string {
	hash := crypto.Keccak256([]byte(sig))
	return "0x" + hex.EncodeToString(hash[:4])
}

func printSurface(w io.Writer, name string, parsed abi.ABI) {
	fmt.Fprintf(w, "# %s\n", name)
	sigs := make([]string, 0, len(parsed.Methods))
	for _, method := range parsed.Methods {
		sigs = append(sigs, method.Sig)
	}
	sort.Strings(sigs)
	for _, sig := range sigs {
		fmt.Fprintf(w, "%s: %s\n", sig, selector(sig))
	}
}

func run(w io.Writer) {
	printSurface(w, "v3", registry.RegistryV3ABI)
	printSurface(w, "legacy", registry.LegacyRegistryABI)
	fmt.Fprintln(w, "# revert")
	for _, sig := range revertSignatures {
		fmt.Fprintf(w, "%s: %s\n", sig, selector(sig))
	}
}

func main() {
	run(os.Stdout)
}
