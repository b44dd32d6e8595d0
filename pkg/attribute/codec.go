package attribute

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// EncodeValue serializes a value for storage. nil encodes to nil (unset).
func EncodeValue(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	data, err := cbor.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode attribute value: %w", err)
	}
	return data, nil
}

// DecodeValue deserializes a stored value into out. Empty data is ErrValueNotSet.
func DecodeValue(data []byte, out any) error {
	if len(data) == 0 {
		return ErrValueNotSet
	}
	if err := cbor.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode attribute value: %w", err)
	}
	return nil
}
