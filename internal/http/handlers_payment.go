package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ecom/internal/core"
	"ecom/internal/payment"
)

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount json.Number `json:"amount"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.Amount == "" {
		fail(w, r, badRequest("Please enter the Amount"))
		return
	}
	amount, err := req.Amount.Float64()
	if err != nil {
		fail(w, r, badRequest("Please enter the Amount"))
		return
	}
	if s.payments == nil {
		fail(w, r, httpError(http.StatusServiceUnavailable, "Payments are not configured"))
		return
	}

	secret, err := s.payments.CreateIntent(r.Context(), amount)
	if errors.Is(err, payment.ErrInvalidAmount) {
		fail(w, r, badRequest("Please enter the Amount"))
		return
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "", envelope{"clientSecret": secret})
}

func (s *Server) handleNewCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Coupon string  `json:"coupon"`
		Amount float64 `json:"amount"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	c := core.Coupon{Code: sanitizeInput(req.Coupon), Amount: req.Amount}
	if err := c.Validate(); err != nil {
		fail(w, r, err)
		return
	}
	if _, err := s.store.CreateCoupon(r.Context(), c); err != nil {
		if errors.Is(err, core.ErrConflict) {
			fail(w, r, badRequest("Coupon code already exists"))
			return
		}
		fail(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Coupon created Successfully", nil)
}

func (s *Server) handleApplyDiscount(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("coupon"))
	if code == "" {
		fail(w, r, badRequest("Invalid Coupon Code"))
		return
	}
	c, err := s.store.FindCoupon(r.Context(), code)
	if err != nil {
		fail(w, r, notFoundAs(err, "Invalid Coupon Code"))
		return
	}
	respond(w, http.StatusOK, "Coupon applied Successfully", envelope{"discount": c.Amount})
}

func (s *Server) handleAllCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := s.store.ListCoupons(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, "All Coupons fetched Successfully", envelope{"coupons": nonNil(coupons)})
}

func (s *Server) handleDeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCoupon(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, notFoundAs(err, "Invalid Coupon ID"))
		return
	}
	respond(w, http.StatusOK, "Coupon code deleted Successfully", nil)
}
