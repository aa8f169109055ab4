package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"git.kudelski.com/go-padding-oracle/weakrsa"
)

var logger = log.New(os.Stderr, "", log.LstdFlags)

func main() {
	message := flag.String("message", "Close primes make for a short Fermat walk", "message to hide in the challenge")
	blockSize := flag.Int("block", weakrsa.BlockSize, "padded block and ciphertext length in bytes")
	mode := flag.String("attack", "none", "solve the challenge afterwards: none, fermat or oracle")
	rounds := flag.Int("rounds", 100, "rounds of Fermat factorization")
	maxQueries := flag.Int("max-queries", 0, "oracle query budget, 0 for none")
	n := flag.String("n", "", "decimal modulus of an existing challenge, solved with Fermat instead of building one")
	e := flag.String("e", "65537", "decimal public exponent of an existing challenge")
	ciphertext := flag.String("ciphertext", "", "hexadecimal ciphertext of an existing challenge")
	flag.Parse()

	if *n != "" {
		// Someone else handed out the challenge, we only have its artifacts
		pub, ct, err := parseArtifacts(*n, *e, *ciphertext)
		if err != nil {
			logger.Fatalln(err)
		}
		recovered, err := solveFermat(pub, ct, *rounds)
		if err != nil {
			logger.Fatalln(err)
		}
		fmt.Printf("And we have recovered:\n\t\t\"%s\"\n", recovered)
		return
	}

	// We first set our things up :
	key, err := weakrsa.DefaultKeyMaterial()
	if err != nil {
		logger.Fatalln(err)
	}
	if key.Size() < *blockSize {
		// Blocks wider than n are reduced on encryption and never decrypt back
		logger.Printf("Warning: the modulus is %d bytes long but blocks are %d bytes, the ciphertext will not decrypt to the message", key.Size(), *blockSize)
	}

	ch, err := newChallenge(key, *blockSize, []byte(*message))
	if err != nil {
		logger.Fatalln(err)
	}
	if err := ch.writeArtifacts(os.Stdout); err != nil {
		logger.Fatalln(err)
	}

	// Now we can try to break it :
	var recovered []byte
	switch *mode {
	case "none":
		return
	case "fermat":
		recovered, err = ch.solveWithFermat(*rounds)
	case "oracle":
		if key.Size() != *blockSize {
			logger.Fatalf("The oracle attack needs blocks as long as the modulus, run with -block %d", key.Size())
		}
		recovered, err = ch.solveWithOracle(*maxQueries)
	default:
		logger.Fatalf("Unknown attack %q", *mode)
	}
	if err != nil {
		logger.Fatalln(err)
	}

	fmt.Printf("And we have recovered:\n\t\t\"%s\"\n", recovered)
}
