// Package order validates inbound order payloads and maps them to the
// print-on-demand partner's order schema.
package order

import (
	"strconv"

	"github.com/go-faster/jx"
)

const (
	// DefaultCurrency is used when the request carries no currency.
	DefaultCurrency = "EUR"
	// DefaultShipmentMethod is used when the first item names no method.
	DefaultShipmentMethod = "standard"
	// DefaultChannel tags partner orders with their origin.
	DefaultChannel = "localhost-dev"

	orderTypeOrder = "order"
)

// LineItem is one element of the inbound items array. The partner defines
// the item schema, so the element is kept verbatim.
type LineItem struct {
	Raw               jx.Raw
	ShipmentMethodUID string
}

// ShippingAddress is the inbound shipping object, kept verbatim.
type ShippingAddress struct {
	Raw     jx.Raw
	Country string `validate:"required"`
}

// OrderRequest is the inbound create-order payload.
type OrderRequest struct {
	OrderID    string
	CustomerID string
	Currency   string
	Items      []LineItem `validate:"min=1"`
	Shipping   ShippingAddress
}

// Decode parses an inbound payload. Unknown fields are ignored; items that is
// not an array and shipping that is not an object are treated as absent.
func Decode(data []byte) (*OrderRequest, error) {
	if !jx.Valid(data) {
		return nil, ErrInvalidBody
	}

	var req OrderRequest
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Object {
		return &req, nil
	}

	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "orderId":
			return decodeOptString(d, &req.OrderID)
		case "customerId":
			return decodeOptString(d, &req.CustomerID)
		case "currency":
			return decodeOptString(d, &req.Currency)
		case "items":
			return decodeItems(d, &req.Items)
		case "shipping":
			return decodeShipping(d, &req.Shipping)
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &req, nil
}

func decodeOptString(d *jx.Decoder, v *string) error {
	*v = ""
	if d.Next() == jx.Null {
		return d.Null()
	}
	s, err := d.Str()
	if err != nil {
		return err
	}
	*v = s
	return nil
}

// decodeItems replaces any earlier items value, so a repeated key keeps only
// the last one.
func decodeItems(d *jx.Decoder, items *[]LineItem) error {
	*items = nil
	if d.Next() != jx.Array {
		return d.Skip()
	}
	return d.Arr(func(d *jx.Decoder) error {
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		item := LineItem{Raw: append(jx.Raw(nil), raw...)}
		if raw.Type() == jx.Object {
			item.ShipmentMethodUID = stringField(item.Raw, "shipmentMethodUid")
		}
		*items = append(*items, item)
		return nil
	})
}

func decodeShipping(d *jx.Decoder, s *ShippingAddress) error {
	*s = ShippingAddress{}
	if d.Next() != jx.Object {
		return d.Skip()
	}
	raw, err := d.Raw()
	if err != nil {
		return err
	}
	s.Raw = append(jx.Raw(nil), raw...)
	s.Country = presentField(s.Raw, "country")
	return nil
}

// stringField returns the string value of key in obj, or "" when absent or
// not a string.
func stringField(obj jx.Raw, key string) (value string) {
	_ = jx.DecodeBytes(obj).ObjBytes(func(d *jx.Decoder, k []byte) error {
		if string(k) != key || d.Next() != jx.String {
			return d.Skip()
		}
		s, err := d.Str()
		if err != nil {
			return err
		}
		value = s
		return nil
	})
	return value
}

// presentField returns a non-empty representation of key in obj when its
// value is set: a non-empty string as is, any other value except null,
// false, numeric zero and "" as its JSON text. A repeated key keeps the last
// value.
func presentField(obj jx.Raw, key string) (value string) {
	_ = jx.DecodeBytes(obj).ObjBytes(func(d *jx.Decoder, k []byte) error {
		if string(k) != key {
			return d.Skip()
		}
		value = ""
		switch d.Next() {
		case jx.String:
			s, err := d.Str()
			value = s
			return err
		case jx.Null:
			return d.Null()
		default:
			raw, err := d.Raw()
			if err != nil {
				return err
			}
			if raw.String() == "false" || isZeroNumber(raw) {
				return nil
			}
			value = raw.String()
			return nil
		}
	})
	return value
}

// isZeroNumber reports whether raw is a JSON number equal to zero, in any
// spelling such as 0.0, -0 or 0e5.
func isZeroNumber(raw jx.Raw) bool {
	if raw.Type() != jx.Number {
		return false
	}
	f, err := strconv.ParseFloat(raw.String(), 64)
	return err == nil && f == 0
}

// MetadataEntry is a key/value tag attached to a partner order.
type MetadataEntry struct {
	Key   string
	Value string
}

// PartnerOrderRequest is the partner's order-creation body.
type PartnerOrderRequest struct {
	OrderType           string
	OrderReferenceID    string
	CustomerReferenceID string
	Currency            string
	Items               []jx.Raw
	ShippingAddress     jx.Raw
	ShipmentMethodUID   string
	Metadata            []MetadataEntry
}

// ToPartner maps req to the partner schema. Currency defaults to EUR and the
// shipment method to the first item's method or "standard".
func ToPartner(req *OrderRequest, channel string) *PartnerOrderRequest {
	p := &PartnerOrderRequest{
		OrderType:           orderTypeOrder,
		OrderReferenceID:    req.OrderID,
		CustomerReferenceID: req.CustomerID,
		Currency:            req.Currency,
		Items:               make([]jx.Raw, len(req.Items)),
		ShippingAddress:     req.Shipping.Raw,
		ShipmentMethodUID:   DefaultShipmentMethod,
		Metadata:            []MetadataEntry{{Key: "channel", Value: channel}},
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	for i, item := range req.Items {
		p.Items[i] = item.Raw
	}
	if len(req.Items) > 0 && req.Items[0].ShipmentMethodUID != "" {
		p.ShipmentMethodUID = req.Items[0].ShipmentMethodUID
	}
	return p
}

// Encode writes p as JSON. Empty reference IDs are omitted.
func (p *PartnerOrderRequest) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("orderType")
	e.Str(p.OrderType)
	if p.OrderReferenceID != "" {
		e.FieldStart("orderReferenceId")
		e.Str(p.OrderReferenceID)
	}
	if p.CustomerReferenceID != "" {
		e.FieldStart("customerReferenceId")
		e.Str(p.CustomerReferenceID)
	}
	e.FieldStart("currency")
	e.Str(p.Currency)

	e.FieldStart("items")
	e.ArrStart()
	for _, item := range p.Items {
		e.Raw(item)
	}
	e.ArrEnd()

	e.FieldStart("shippingAddress")
	if len(p.ShippingAddress) == 0 {
		e.Null()
	} else {
		e.Raw(p.ShippingAddress)
	}
	e.FieldStart("shipmentMethodUid")
	e.Str(p.ShipmentMethodUID)

	e.FieldStart("metadata")
	e.ArrStart()
	for _, m := range p.Metadata {
		e.ObjStart()
		e.FieldStart("key")
		e.Str(m.Key)
		e.FieldStart("value")
		e.Str(m.Value)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}

// MarshalJSON implements json.Marshaler.
func (p *PartnerOrderRequest) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	p.Encode(&e)
	return e.Bytes(), nil
}
