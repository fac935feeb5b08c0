// Package main mints operator credentials for the scoregate ops API.
//
// Two subcommands:
//
//	jwt  — sign an HS256 operator JWT for the configured signing key
//	key  — generate a random static ops key plus the bcrypt hash to configure
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"scoregate/internal/platform/middleware"
	"scoregate/pkg/secrets"
)

func main() {
	jwtCmd := flag.NewFlagSet("jwt", flag.ExitOnError)
	jwtOperator := jwtCmd.String("operator", "", "Operator name embedded in the token (required)")
	jwtSigningKey := jwtCmd.String("signing-key", os.Getenv("SCOREGATE_OPS_JWT_SIGNING_KEY"), "HS256 signing key (defaults to SCOREGATE_OPS_JWT_SIGNING_KEY)")
	jwtTTL := jwtCmd.Duration("ttl", 12*time.Hour, "Token time-to-live")
	jwtJSON := jwtCmd.Bool("json", false, "Output as JSON")

	keyCmd := flag.NewFlagSet("key", flag.ExitOnError)
	keyJSON := keyCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "jwt":
		jwtCmd.Parse(os.Args[2:])
		mintJWT(*jwtOperator, *jwtSigningKey, *jwtTTL, *jwtJSON)
	case "key":
		keyCmd.Parse(os.Args[2:])
		mintStaticKey(*keyJSON)
	default:
		printUsage()
		os.Exit(1)
	}
}

func mintJWT(operator, signingKey string, ttl time.Duration, asJSON bool) {
	if operator == "" {
		fmt.Fprintln(os.Stderr, "error: -operator is required")
		os.Exit(1)
	}
	if signingKey == "" {
		fmt.Fprintln(os.Stderr, "error: no signing key (set -signing-key or SCOREGATE_OPS_JWT_SIGNING_KEY)")
		os.Exit(1)
	}

	now := time.Now()
	claims := middleware.OpsClaims{
		Operator: operator,
		Role:     "operator",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: sign token: %v\n", err)
		os.Exit(1)
	}

	if asJSON {
		out, _ := json.MarshalIndent(map[string]string{
			"token":      signed,
			"operator":   operator,
			"expires_at": now.Add(ttl).UTC().Format(time.RFC3339),
			"usage":      `curl -H "Authorization: Bearer <token>" ...`,
		}, "", "  ")
		fmt.Println(string(out))
		return
	}

	fmt.Printf("Operator JWT for %q (expires %s):\n\n%s\n", operator, now.Add(ttl).UTC().Format(time.RFC3339), signed)
}

func mintStaticKey(asJSON bool) {
	key, err := secrets.Generate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: generate key: %v\n", err)
		os.Exit(1)
	}
	hash, err := secrets.Hash(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: hash key: %v\n", err)
		os.Exit(1)
	}

	if asJSON {
		out, _ := json.MarshalIndent(map[string]string{
			"key":  key,
			"hash": hash,
		}, "", "  ")
		fmt.Println(string(out))
		return
	}

	fmt.Printf("Ops key (give to the operator, sent as X-Ops-Key):\n%s\n\n", key)
	fmt.Printf("Hash (set as SCOREGATE_OPS_KEY_HASH):\n%s\n", hash)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: opstoken <command> [flags]

Commands:
  jwt   Sign an HS256 operator JWT
  key   Generate a static ops key and its bcrypt hash

Run 'opstoken <command> -h' for flags.`)
}
