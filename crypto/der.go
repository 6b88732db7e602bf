package crypto

import (
	"encoding/asn1"
	"math/big"

	"github.com/pkg/errors"
)

type derSignature struct {
	R, S *big.Int
}

func rsToDER(r, s []byte) ([]byte, error) {
	out, err := asn1.Marshal(derSignature{
		R: new(big.Int).SetBytes(r),
		S: new(big.Int).SetBytes(s),
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding DER signature")
	}
	return out, nil
}

func derToRS(der []byte) ([]byte, []byte, error) {
	var sig derSignature
	if _, err := asn1.Unmarshal(der, &sig); err != nil {
		return nil, nil, errors.Wrap(err, "decoding DER signature")
	}
	r := make([]byte, 32)
	s := make([]byte, 32)
	sig.R.FillBytes(r)
	sig.S.FillBytes(s)
	return r, s, nil
}
