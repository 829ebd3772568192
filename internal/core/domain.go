package core

import (
	"time"
)

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"

	GenderMale   Gender = "male"
	GenderFemale Gender = "female"

	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
)

// Numeric order fields addressable by name, used by the dashboard series.
const (
	FieldTotal           = "total"
	FieldSubtotal        = "subtotal"
	FieldDiscount        = "discount"
	FieldTax             = "tax"
	FieldShippingCharges = "shippingCharges"
	FieldPrice           = "price"
	FieldStock           = "stock"
)

type (
	Role        string
	Gender      string
	OrderStatus string

	Product struct {
		ID        string    `json:"_id" yaml:"id"`
		Name      string    `json:"name" yaml:"name"`
		Photo     string    `json:"photo" yaml:"photo"`
		Price     float64   `json:"price" yaml:"price"`
		Stock     int       `json:"stock" yaml:"stock"`
		Category  string    `json:"category" yaml:"category"`
		CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
	}

	User struct {
		ID        string    `json:"_id" yaml:"id"`
		Name      string    `json:"name" yaml:"name"`
		Email     string    `json:"email" yaml:"email"`
		Photo     string    `json:"photo" yaml:"photo"`
		Role      Role      `json:"role" yaml:"role"`
		Gender    Gender    `json:"gender" yaml:"gender"`
		DOB       time.Time `json:"dob" yaml:"dob"`
		CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
	}

	ShippingInfo struct {
		Address string `json:"address" yaml:"address"`
		City    string `json:"city" yaml:"city"`
		State   string `json:"state" yaml:"state"`
		Country string `json:"country" yaml:"country"`
		PinCode string `json:"pinCode" yaml:"pinCode"`
	}

	OrderItem struct {
		Name      string  `json:"name" yaml:"name"`
		Photo     string  `json:"photo" yaml:"photo"`
		Price     float64 `json:"price" yaml:"price"`
		Quantity  int     `json:"quantity" yaml:"quantity"`
		ProductID string  `json:"productId" yaml:"productId"`
	}

	Order struct {
		ID              string       `json:"_id" yaml:"id"`
		UserID          string       `json:"user" yaml:"user"`
		ShippingInfo    ShippingInfo `json:"shippingInfo" yaml:"shippingInfo"`
		OrderItems      []OrderItem  `json:"orderItems" yaml:"orderItems"`
		Subtotal        float64      `json:"subtotal" yaml:"subtotal"`
		Tax             float64      `json:"tax" yaml:"tax"`
		ShippingCharges float64      `json:"shippingCharges" yaml:"shippingCharges"`
		Discount        float64      `json:"discount" yaml:"discount"`
		Total           float64      `json:"total" yaml:"total"`
		Status          OrderStatus  `json:"status" yaml:"status"`
		CreatedAt       time.Time    `json:"createdAt" yaml:"createdAt"`
		UpdatedAt       time.Time    `json:"updatedAt" yaml:"updatedAt"`
	}

	Coupon struct {
		ID     string  `json:"_id" yaml:"id"`
		Code   string  `json:"code" yaml:"code"`
		Amount float64 `json:"amount" yaml:"amount"`
	}
)

// Next returns the status an order moves to when it is processed.
// Delivered is terminal.
func (s OrderStatus) Next() OrderStatus {
	switch s {
	case StatusProcessing:
		return StatusShipped
	default:
		return StatusDelivered
	}
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered:
		return true
	}
	return false
}

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale
}

// Age returns the user's age in whole years at now. The year is not counted
// until the birthday has been reached.
func (u User) Age(now time.Time) int {
	dob := u.DOB.In(now.Location())
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// ItemCount is the number of order lines, not the sum of quantities.
func (o Order) ItemCount() int {
	return len(o.OrderItems)
}

func (p Product) Timestamp() time.Time { return p.CreatedAt }
func (u User) Timestamp() time.Time    { return u.CreatedAt }
func (o Order) Timestamp() time.Time   { return o.CreatedAt }

// Numeric returns the named numeric field, or 0 when the field is unknown.
func (o Order) Numeric(field string) float64 {
	switch field {
	case FieldTotal:
		return o.Total
	case FieldSubtotal:
		return o.Subtotal
	case FieldDiscount:
		return o.Discount
	case FieldTax:
		return o.Tax
	case FieldShippingCharges:
		return o.ShippingCharges
	}
	return 0
}

func (p Product) Numeric(field string) float64 {
	switch field {
	case FieldPrice:
		return p.Price
	case FieldStock:
		return float64(p.Stock)
	}
	return 0
}

// Users carry no numeric fields of their own.
func (u User) Numeric(string) float64 { return 0 }
