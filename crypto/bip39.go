package crypto

import (
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"
	"crypto/sha512"
)

// SeedFromMnemonic validates mnemonic against the BIP39 wordlist/checksum
// and derives the 64-byte seed used as NewMasterKey's input, per spec.md
// §8 S6 ("wallet created from mnemonic ... with password").
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("invalid BIP39 mnemonic")
	}
	salt := "mnemonic" + passphrase
	return pbkdf2.Key([]byte(mnemonic), []byte(salt), 2048, 64, sha512.New), nil
}
