package client

import (
	"bytes"
	"encoding/json"

	"github.com/VishalYadav30301/wishlist-service/internal/domain"
)

// CartResponse is the decoded body of a cart transfer call. Decoding records
// the structural facts the transfer gate needs: whether a JSON value was
// returned at all, whether it was an empty object, and whether an "items"
// field was present as a proper array. Items is only populated when all of
// those hold.
type CartResponse struct {
	Items []domain.CartLineItem

	isNull     bool
	isEmpty    bool
	itemsValid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *CartResponse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		r.isNull = true
		return nil
	}

	// A non-object value (array, string, number) is a structurally wrong
	// body; record it as gate-invalid rather than failing the decode so the
	// caller reports a malformed response, not a transport error.
	if trimmed[0] != '{' {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return err
	}

	if len(fields) == 0 {
		r.isEmpty = true
		return nil
	}

	raw, ok := fields["items"]
	if !ok {
		return nil
	}

	rawItems := bytes.TrimSpace(raw)
	if len(rawItems) == 0 || rawItems[0] != '[' {
		return nil
	}

	var items []domain.CartLineItem
	if err := json.Unmarshal(rawItems, &items); err != nil {
		return nil
	}

	r.Items = items
	r.itemsValid = true
	return nil
}

// IsNull reports whether the body carried no JSON value (null or empty).
func (r *CartResponse) IsNull() bool {
	return r.isNull
}

// IsEmpty reports whether the body was a structurally empty object.
func (r *CartResponse) IsEmpty() bool {
	return r.isEmpty
}

// HasValidItems reports whether an "items" field was present as a proper
// JSON array.
func (r *CartResponse) HasValidItems() bool {
	return r.itemsValid
}
