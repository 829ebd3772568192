package core

import (
	"net/mail"
	"strings"
)

const maxNameLength = 200

var (
	ErrProductDetails = Invalid("Please Fill the Details")
	ErrUserDetails    = Invalid("Please fill all the Details")
	ErrOrderDetails   = Invalid("Please Fill all the Details")
	ErrCouponDetails  = Invalid("Please fill the Details Completely")
	ErrInvalidEmail   = Invalid("Please enter a valid Email")
	ErrInvalidGender  = Invalid("Gender must be male or female")
	ErrInvalidRole    = Invalid("Role must be admin or user")
	ErrNameTooLong    = Invalid("Name too long (max 200 characters)")
	ErrNegativeStock  = Invalid("Stock cannot be negative")
)

// Validate checks a product before it is created. The photo path is
// checked by the upload handler, not here.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Category) == "" || p.Price <= 0 {
		return ErrProductDetails
	}
	if len(p.Name) > maxNameLength {
		return ErrNameTooLong
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

// NormalizeCategory trims and lower-cases a category label.
func NormalizeCategory(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}

func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" || strings.TrimSpace(u.Name) == "" ||
		strings.TrimSpace(u.Email) == "" || strings.TrimSpace(u.Photo) == "" ||
		u.Gender == "" || u.DOB.IsZero() {
		return ErrUserDetails
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidEmail
	}
	if !u.Gender.IsValid() {
		return ErrInvalidGender
	}
	if u.Role != "" && !u.Role.IsValid() {
		return ErrInvalidRole
	}
	return nil
}

func (o Order) Validate() error {
	if o.ShippingInfo == (ShippingInfo{}) || len(o.OrderItems) == 0 ||
		strings.TrimSpace(o.UserID) == "" ||
		o.Subtotal == 0 || o.Tax == 0 || o.Total == 0 {
		return ErrOrderDetails
	}
	return nil
}

func (c Coupon) Validate() error {
	if strings.TrimSpace(c.Code) == "" || c.Amount <= 0 {
		return ErrCouponDetails
	}
	return nil
}
