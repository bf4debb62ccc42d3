package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FreeLabel is the literal stored for items given away at no cost.
const FreeLabel = "Free"

// Price is either a positive amount or the literal "Free". It is stored as a JSON number
// or as the string "Free". A stored 0 reads as Free, as form input does.
type Price struct {
	Amount float64
	Free   bool
}

func Amount(v float64) Price { return Price{Amount: v} }

func FreePrice() Price { return Price{Free: true} }

// ParsePrice reads form input: empty, zero and "free" (any case) mean Free, anything else
// must be a positive number.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, FreeLabel) {
		return FreePrice(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Price{}, fmt.Errorf("price %q is not a number", s)
	}
	if v == 0 {
		return FreePrice(), nil
	}
	if v < 0 {
		return Price{}, fmt.Errorf("price must be positive")
	}
	return Amount(v), nil
}

func (p Price) Valid() bool {
	return p.Free || p.Amount > 0
}

func (p Price) String() string {
	if p.Free {
		return FreeLabel
	}
	return strconv.FormatFloat(p.Amount, 'f', -1, 64)
}

func (p Price) MarshalJSON() ([]byte, error) {
	if p.Free {
		return json.Marshal(FreeLabel)
	}
	return json.Marshal(p.Amount)
}

func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s != FreeLabel {
			return fmt.Errorf("price: unexpected string %q", s)
		}
		*p = FreePrice()
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	if v == 0 {
		*p = FreePrice()
		return nil
	}
	*p = Amount(v)
	return nil
}
