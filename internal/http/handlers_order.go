package http

import (
	"net/http"
	"strings"
	"time"

	"ecom/internal/core"
)

type (
	userRef struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	}

	// orderView is an order with its user expanded to id and name.
	orderView struct {
		core.Order
		User *userRef `json:"user"`
	}
)

func (s *Server) handleNewOrder(w http.ResponseWriter, r *http.Request) {
	var o core.Order
	if err := decodeJSON(w, r, &o); err != nil {
		fail(w, r, err)
		return
	}
	o.ID = ""
	o.Status = ""
	o.CreatedAt, o.UpdatedAt = time.Time{}, time.Time{}
	o.UserID = sanitizeInput(o.UserID)

	if _, err := s.orders.PlaceOrder(r.Context(), o); err != nil {
		fail(w, r, err)
		return
	}
	s.invalidateCatalog()
	respond(w, http.StatusCreated, "Order Placed Successfully", nil)
}

func (s *Server) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		fail(w, r, httpError(http.StatusUnauthorized, "Please Login First"))
		return
	}
	orders, err := s.store.ListOrders(r.Context(), core.OrderFilter{UserID: id, Newest: true})
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Order details fetched Successfully", envelope{"orders": nonNil(orders)})
}

func (s *Server) handleAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.store.ListOrders(r.Context(), core.OrderFilter{Newest: true})
	if err != nil {
		fail(w, r, err)
		return
	}
	users, err := s.store.ListUsers(r.Context(), core.UserFilter{})
	if err != nil {
		fail(w, r, err)
		return
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		v := orderView{Order: o}
		if name, ok := names[o.UserID]; ok {
			v.User = &userRef{ID: o.UserID, Name: name}
		}
		views = append(views, v)
	}
	respond(w, http.StatusOK, "All Orders fetched Successfully", envelope{"orders": views})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := s.store.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, notFoundAs(err, "Order not Found"))
		return
	}
	respond(w, http.StatusOK, "Order fetched Successfully", envelope{"order": o})
}

func (s *Server) handleProcessOrder(w http.ResponseWriter, r *http.Request) {
	if _, err := s.orders.ProcessOrder(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, notFoundAs(err, "Order not Found"))
		return
	}
	respond(w, http.StatusOK, "Order updated Successfully", nil)
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := s.orders.DeleteOrder(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, notFoundAs(err, "Order not Found"))
		return
	}
	respond(w, http.StatusOK, "Order deleted Successfully", nil)
}
