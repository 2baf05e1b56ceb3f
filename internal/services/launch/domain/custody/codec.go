package custody

import (
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
)

const (
	layoutVersion = 2
	layoutSize    = 3*address.Size + 16
)

// Encode serializes a custody record body.
func Encode(c Custody) []byte {
	return record.NewWriter(address.KindCustody, layoutVersion, layoutSize).
		Key(c.Key).
		Key(c.Launch).
		Key(c.User).
		U64(c.Balance).
		U64(c.Committed).
		Bytes()
}

// Decode parses a custody record body.
func Decode(raw []byte) (Custody, error) {
	r, err := record.NewReader(address.KindCustody, layoutVersion, layoutSize, raw)
	if err != nil {
		return Custody{}, err
	}
	c := Custody{
		Key:       r.Key(),
		Launch:    r.Key(),
		User:      r.Key(),
		Balance:   r.U64(),
		Committed: r.U64(),
	}
	if err := r.Err(); err != nil {
		return Custody{}, err
	}
	return c, nil
}
