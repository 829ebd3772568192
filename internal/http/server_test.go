package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ecom/internal/core"
	applog "ecom/internal/log"
	"ecom/internal/payment"
	"ecom/internal/services"
	"ecom/internal/store/memory"
)

type fakePayments struct {
	amount float64
	err    error
}

func (f *fakePayments) CreateIntent(_ context.Context, amount float64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.amount = amount
	return "pi_test_secret", nil
}

func newTestServer(t *testing.T, mutate func(*Options)) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New()
	ctx := context.Background()
	dob := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, u := range []core.User{
		{ID: "admin", Name: "Root", Email: "root@example.com", Photo: "a.png", Gender: core.GenderFemale, DOB: dob, Role: core.RoleAdmin},
		{ID: "u1", Name: "Ann", Email: "ann@example.com", Photo: "b.png", Gender: core.GenderFemale, DOB: dob, Role: core.RoleUser},
	} {
		if _, err := st.CreateUser(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	opts := Options{
		Addr:           ":0",
		Store:          st,
		Orders:         services.NewOrderService(st, nil),
		UploadDir:      t.TempDir(),
		ProductPerPage: 2,
		RatePerMinute:  1000,
		Logger:         applog.New(applog.Config{Format: "text", Output: io.Discard}),
	}
	if mutate != nil {
		mutate(&opts)
	}
	srv := NewServer(opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, st
}

type result struct {
	Code int
	Body map[string]any
}

func do(t *testing.T, srv *Server, req *http.Request) result {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	res := result{Code: rr.Code}
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &res.Body); err != nil {
			t.Fatalf("decode body %q: %v", rr.Body.String(), err)
		}
	}
	return res
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, photoName string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if photoName != "" {
		fw, err := mw.CreateFormFile("photo", photoName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = fw.Write([]byte("not really an image"))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func uploads(t *testing.T, srv *Server) []string {
	t.Helper()
	entries, err := os.ReadDir(srv.uploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func expect(t *testing.T, res result, code int, message string) {
	t.Helper()
	if res.Code != code {
		t.Fatalf("status = %d, want %d (body %v)", res.Code, code, res.Body)
	}
	if message != "" && res.Body["message"] != message {
		t.Fatalf("message = %v, want %q", res.Body["message"], message)
	}
}

func TestIndexAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "API is Working well" {
		t.Fatalf("index = %d %q", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("expected security headers")
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		res := do(t, srv, httptest.NewRequest(http.MethodGet, path, nil))
		if res.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, res.Code)
		}
	}
}

func TestAdminGate(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	tests := []struct {
		query   string
		code    int
		message string
	}{
		{"", http.StatusUnauthorized, "Please Login First"},
		{"?id=ghost", http.StatusUnauthorized, "Invalid User ID"},
		{"?id=u1", http.StatusUnauthorized, "Unauthorized Access"},
		{"?id=admin", http.StatusOK, "Users Received Successfully"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/user/all"+tt.query, nil))
			expect(t, res, tt.code, tt.message)
			if tt.code != http.StatusOK && res.Body["success"] != false {
				t.Fatalf("success = %v", res.Body["success"])
			}
		})
	}
}

func TestUserEndpoints(t *testing.T) {
	srv, st := newTestServer(t, nil)

	body := map[string]any{
		"_id": "u2", "name": "Bob", "email": "BOB@example.com", "photo": "bob.png",
		"gender": "male", "dob": "1985-03-04", "role": "admin",
	}
	expect(t, do(t, srv, jsonRequest(http.MethodPost, "/api/v1/user/new", body)), http.StatusCreated, "Welcome, Bob")
	expect(t, do(t, srv, jsonRequest(http.MethodPost, "/api/v1/user/new", body)), http.StatusOK, "Welcome Bob")

	u, err := st.GetUser(context.Background(), "u2")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.Role != core.RoleUser || u.Email != "bob@example.com" {
		t.Fatalf("stored user = %+v", u)
	}

	incomplete := map[string]any{"_id": "u3", "name": "Cy"}
	expect(t, do(t, srv, jsonRequest(http.MethodPost, "/api/v1/user/new", incomplete)), http.StatusBadRequest, "Please fill all the Details")

	res := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/user/u2", nil))
	expect(t, res, http.StatusOK, "")
	if res.Body["user"].(map[string]any)["name"] != "Bob" {
		t.Fatalf("user = %v", res.Body["user"])
	}
	expect(t, do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/user/nobody", nil)), http.StatusBadRequest, "Invalid ID")

	expect(t, do(t, srv, httptest.NewRequest(http.MethodDelete, "/api/v1/user/u2?id=admin", nil)), http.StatusOK, "User Deleted Successfully")
	expect(t, do(t, srv, httptest.NewRequest(http.MethodDelete, "/api/v1/user/u2?id=admin", nil)), http.StatusBadRequest, "Invalid ID")

	expect(t, do(t, srv, httptest.NewRequest(http.MethodPost, "/api/v1/user/new", strings.NewReader("{bad"))), http.StatusBadRequest, "Invalid request body")
}

func TestProductLifecycle(t *testing.T) {
	srv, st := newTestServer(t, nil)
	ctx := context.Background()

	fields := map[string]string{"name": "Phone", "price": "499.5", "stock": "3", "category": "  Electronics "}
	expect(t, do(t, srv, multipartRequest(t, http.MethodPost, "/api/v1/product/new?id=admin", fields, "")), http.StatusBadRequest, "Please Add the Photo")

	incomplete := map[string]string{"name": "Phone", "category": "x"}
	expect(t, do(t, srv, multipartRequest(t, http.MethodPost, "/api/v1/product/new?id=admin", incomplete, "p.png")), http.StatusBadRequest, "Please Fill the Details")
	if got := uploads(t, srv); len(got) != 0 {
		t.Fatalf("photo should be removed on validation failure, found %v", got)
	}

	expect(t, do(t, srv, multipartRequest(t, http.MethodPost, "/api/v1/product/new?id=admin", fields, "p.png")), http.StatusCreated, "Product created Successfully")
	files := uploads(t, srv)
	if len(files) != 1 || filepath.Ext(files[0]) != ".png" {
		t.Fatalf("uploads = %v", files)
	}

	products, _ := st.ListProducts(ctx, core.ProductFilter{})
	if len(products) != 1 {
		t.Fatalf("products = %d", len(products))
	}
	p := products[0]
	if p.Category != "electronics" || p.Photo != "uploads/"+files[0] || p.Stock != 3 {
		t.Fatalf("product = %+v", p)
	}

	res := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/product/"+p.ID, nil))
	expect(t, res, http.StatusOK, "Product Fetched Successfully")
	expect(t, do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/product/missing", nil)), http.StatusBadRequest, "Product not Found")

	// Warm the category cache, then update; the write must invalidate it.
	res = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/product/categories", nil))
	expect(t, res, http.StatusOK, "Categories Fetched Successfully")

	update := map[string]string{"category": "Phones", "price": "450"}
	expect(t, do(t, srv, multipartRequest(t, http.MethodPut, "/api/v1/product/"+p.ID+"?id=admin", update, "new.jpg")), http.StatusOK, "Product updated Successfully")

	updated, _ := st.GetProduct(ctx, p.ID)
	if updated.Category != "phones" || updated.Price != 450 || updated.Name != "Phone" || updated.Stock != 3 {
		t.Fatalf("updated = %+v", updated)
	}
	files = uploads(t, srv)
	if len(files) != 1 || filepath.Ext(files[0]) != ".jpg" {
		t.Fatalf("old photo should be replaced, uploads = %v", files)
	}

	res = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/product/categories", nil))
	cats := res.Body["categories"].([]any)
	if len(cats) != 1 || cats[0] != "phones" {
		t.Fatalf("categories = %v", cats)
	}

	expect(t, do(t, srv, httptest.NewRequest(http.MethodDelete, "/api/v1/product/"+p.ID+"?id=admin", nil)), http.StatusOK, "Product deleted Successfully")
	if got := uploads(t, srv); len(got) != 0 {
		t.Fatalf("photo should be deleted with product, found %v", got)
	}
	expect(t, do(t, srv, httptest.NewRequest(http.MethodDelete, "/api/v1/product/"+p.ID+"?id=admin", nil)), http.StatusBadRequest, "Product not Found")
}

func TestProductSearch(t *testing.T) {
	srv, st := newTestServer(t, nil)
	ctx := context.Background()
	for _, p := range []core.Product{
		{Name: "Gaming Laptop", Category: "laptop", Price: 900, Stock: 2},
		{Name: "Office Laptop", Category: "laptop", Price: 500, Stock: 5},
		{Name: "Phone", Category: "phone", Price: 300, Stock: 1},
	} {
		if _, err := st.CreateProduct(ctx, p); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	tests := []struct {
		query     string
		wantNames []string
		wantPages float64
	}{
		{"", nil, 2},
		{"?search=LAPTOP&sort=asc", []string{"Office Laptop", "Gaming Laptop"}, 1},
		{"?category=laptop&price=600", []string{"Office Laptop"}, 1},
		{"?sort=dsc&page=2", []string{"Phone"}, 2},
		{"?search=tablet", []string{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/product/all"+tt.query, nil))
			expect(t, res, http.StatusOK, "")
			if res.Body["totalPage"] != tt.wantPages {
				t.Fatalf("totalPage = %v, want %v", res.Body["totalPage"], tt.wantPages)
			}
			if tt.wantNames == nil {
				return
			}
			got := res.Body["products"].([]any)
			if len(got) != len(tt.wantNames) {
				t.Fatalf("products = %v", got)
			}
			for i, name := range tt.wantNames {
				if got[i].(map[string]any)["name"] != name {
					t.Fatalf("product %d = %v, want %s", i, got[i], name)
				}
			}
		})
	}

	res := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/product/latest", nil))
	expect(t, res, http.StatusOK, "")
	if n := len(res.Body["products"].([]any)); n != 3 {
		t.Fatalf("latest = %d", n)
	}

	res = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/product/admin-products?id=admin", nil))
	expect(t, res, http.StatusOK, "")
	if n := len(res.Body["products"].([]any)); n != 3 {
		t.Fatalf("admin products = %d", n)
	}
}

func TestOrderFlow(t *testing.T) {
	srv, st := newTestServer(t, nil)
	ctx := context.Background()
	p, _ := st.CreateProduct(ctx, core.Product{Name: "Phone", Category: "phone", Price: 300, Stock: 5})

	order := map[string]any{
		"user":         "u1",
		"status":       "Delivered",
		"shippingInfo": map[string]any{"address": "1 Road", "city": "Pune", "state": "MH", "country": "India", "pinCode": "411001"},
		"orderItems":   []map[string]any{{"name": "Phone", "price": 300, "quantity": 2, "productId": p.ID}},
		"subtotal":     600, "tax": 108, "shippingCharges": 0, "discount": 0, "total": 708,
	}
	expect(t, do(t, srv, jsonRequest(http.MethodPost, "/api/v1/order/new", order)), http.StatusCreated, "Order Placed Successfully")
	expect(t, do(t, srv, jsonRequest(http.MethodPost, "/api/v1/order/new", map[string]any{"user": "u1"})), http.StatusBadRequest, "Please Fill all the Details")

	if got, _ := st.GetProduct(ctx, p.ID); got.Stock != 3 {
		t.Fatalf("stock = %d, want 3", got.Stock)
	}

	expect(t, do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/order/my", nil)), http.StatusUnauthorized, "Please Login First")
	res := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/order/my?id=u1", nil))
	expect(t, res, http.StatusOK, "Order details fetched Successfully")
	mine := res.Body["orders"].([]any)
	if len(mine) != 1 {
		t.Fatalf("orders = %v", mine)
	}
	placed := mine[0].(map[string]any)
	if placed["status"] != string(core.StatusProcessing) {
		t.Fatalf("new order status = %v", placed["status"])
	}
	id := placed["_id"].(string)

	res = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/order/all?id=admin", nil))
	expect(t, res, http.StatusOK, "All Orders fetched Successfully")
	user := res.Body["orders"].([]any)[0].(map[string]any)["user"].(map[string]any)
	if user["_id"] != "u1" || user["name"] != "Ann" {
		t.Fatalf("populated user = %v", user)
	}

	for _, want := range []core.OrderStatus{core.StatusShipped, core.StatusDelivered, core.StatusDelivered} {
		expect(t, do(t, srv, httptest.NewRequest(http.MethodPut, "/api/v1/order/"+id+"?id=admin", nil)), http.StatusOK, "Order updated Successfully")
		res = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/order/"+id, nil))
		expect(t, res, http.StatusOK, "Order fetched Successfully")
		if got := res.Body["order"].(map[string]any)["status"]; got != string(want) {
			t.Fatalf("status = %v, want %s", got, want)
		}
	}

	expect(t, do(t, srv, httptest.NewRequest(http.MethodDelete, "/api/v1/order/"+id+"?id=admin", nil)), http.StatusOK, "Order deleted Successfully")
	expect(t, do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/order/"+id, nil)), http.StatusBadRequest, "Order not Found")
	expect(t, do(t, srv, httptest.NewRequest(http.MethodPut, "/api/v1/order/"+id+"?id=admin", nil)), http.StatusBadRequest, "Order not Found")
}

func TestPayments(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)
		expect(t, do(t, srv, jsonRequest(http.MethodPost, "/api/v1/payment/create", map[string]any{"amount": 10})), http.StatusServiceUnavailable, "")
	})

	provider := &fakePayments{}
	srv, _ := newTestServer(t, func(o *Options) { o.Payments = provider })

	expect(t, do(t, srv, jsonRequest(http.MethodPost, "/api/v1/payment/create", map[string]any{})), http.StatusBadRequest, "Please enter the Amount")

	res := do(t, srv, jsonRequest(http.MethodPost, "/api/v1/payment/create", map[string]any{"amount": 49.5}))
	expect(t, res, http.StatusCreated, "")
	if res.Body["clientSecret"] != "pi_test_secret" || provider.amount != 49.5 {
		t.Fatalf("payment = %v amount=%v", res.Body, provider.amount)
	}

	provider.err = payment.ErrInvalidAmount
	expect(t, do(t, srv, jsonRequest(http.MethodPost, "/api/v1/payment/create", map[string]any{"amount": 0})), http.StatusBadRequest, "Please enter the Amount")
	provider.err = errors.New("stripe down")
	expect(t, do(t, srv, jsonRequest(http.MethodPost, "/api/v1/payment/create", map[string]any{"amount": 5})), http.StatusInternalServerError, "Internal Server Error")
}

func TestCoupons(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	expect(t, do(t, srv, jsonRequest(http.MethodPost, "/api/v1/payment/coupon/new?id=admin", map[string]any{"coupon": "SAVE10"})), http.StatusBadRequest, "Please fill the Details Completely")
	expect(t, do(t, srv, jsonRequest(http.MethodPost, "/api/v1/payment/coupon/new?id=admin", map[string]any{"coupon": "SAVE10", "amount": 10})), http.StatusCreated, "Coupon created Successfully")
	expect(t, do(t, srv, jsonRequest(http.MethodPost, "/api/v1/payment/coupon/new?id=u1", map[string]any{"coupon": "X", "amount": 1})), http.StatusUnauthorized, "Unauthorized Access")

	res := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/payment/discount?coupon=SAVE10", nil))
	expect(t, res, http.StatusOK, "Coupon applied Successfully")
	if res.Body["discount"] != float64(10) {
		t.Fatalf("discount = %v", res.Body["discount"])
	}
	expect(t, do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/payment/discount?coupon=NOPE", nil)), http.StatusBadRequest, "Invalid Coupon Code")

	res = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/payment/coupon/all?id=admin", nil))
	expect(t, res, http.StatusOK, "All Coupons fetched Successfully")
	coupons := res.Body["coupons"].([]any)
	if len(coupons) != 1 {
		t.Fatalf("coupons = %v", coupons)
	}
	id := coupons[0].(map[string]any)["_id"].(string)

	expect(t, do(t, srv, httptest.NewRequest(http.MethodDelete, "/api/v1/payment/coupon/"+id+"?id=admin", nil)), http.StatusOK, "Coupon code deleted Successfully")
	expect(t, do(t, srv, httptest.NewRequest(http.MethodDelete, "/api/v1/payment/coupon/"+id+"?id=admin", nil)), http.StatusBadRequest, "Invalid Coupon ID")
}

func TestDashboardEndpoints(t *testing.T) {
	srv, st := newTestServer(t, nil)
	ctx := context.Background()
	_, _ = st.CreateProduct(ctx, core.Product{Name: "Phone", Category: "phone", Price: 300, Stock: 0})
	_, _ = st.CreateOrder(ctx, core.Order{
		UserID:     "u1",
		OrderItems: []core.OrderItem{{Name: "Phone", Price: 300, Quantity: 1}},
		Subtotal:   300, Tax: 54, Total: 354,
	})

	tests := []struct {
		path, message, key string
	}{
		{"/api/v1/dashboard/stats", "Dashboard data fetched Successfully", "stats"},
		{"/api/v1/dashboard/pie", "Charts-Data Fetched Successfully", "charts"},
		{"/api/v1/dashboard/bar", "BarChart-Data Fetched Successfully", "charts"},
		{"/api/v1/dashboard/line", "LineChart-Data Fetched Successfully", "charts"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			expect(t, do(t, srv, httptest.NewRequest(http.MethodGet, tt.path, nil)), http.StatusUnauthorized, "Please Login First")
			res := do(t, srv, httptest.NewRequest(http.MethodGet, tt.path+"?id=admin", nil))
			expect(t, res, http.StatusOK, tt.message)
			if _, ok := res.Body[tt.key].(map[string]any); !ok {
				t.Fatalf("missing %q payload: %v", tt.key, res.Body)
			}
		})
	}

	res := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/stats?id=admin", nil))
	count := res.Body["stats"].(map[string]any)["count"].(map[string]any)
	if count["order"] != float64(1) || count["user"] != float64(2) || count["revenue"] != float64(354) {
		t.Fatalf("count = %v", count)
	}
}

func TestRateLimitAppliesToWritesOnly(t *testing.T) {
	srv, _ := newTestServer(t, func(o *Options) { o.RatePerMinute = 1 })

	body := map[string]any{"_id": "u1"}
	expect(t, do(t, srv, jsonRequest(http.MethodPost, "/api/v1/user/new", body)), http.StatusOK, "Welcome Ann")
	res := do(t, srv, jsonRequest(http.MethodPost, "/api/v1/user/new", body))
	expect(t, res, http.StatusTooManyRequests, "")

	for i := 0; i < 3; i++ {
		expect(t, do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/user/u1", nil)), http.StatusOK, "")
	}
}
