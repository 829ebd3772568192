package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ecom/internal/core"
	applog "ecom/internal/log"
)

var allowedPhotoExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

func (s *Server) handleNewProduct(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		fail(w, r, err)
		return
	}

	photo, err := s.savePhoto(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if photo == "" {
		fail(w, r, badRequest("Please Add the Photo"))
		return
	}

	p := core.Product{
		Name:     sanitizeInput(r.FormValue("name")),
		Category: core.NormalizeCategory(r.FormValue("category")),
		Photo:    photo,
	}
	price, perr := strconv.ParseFloat(strings.TrimSpace(r.FormValue("price")), 64)
	stock, serr := strconv.Atoi(strings.TrimSpace(r.FormValue("stock")))
	if perr != nil || serr != nil {
		s.removePhoto(r, photo)
		fail(w, r, core.ErrProductDetails)
		return
	}
	p.Price, p.Stock = price, stock

	if err := p.Validate(); err != nil {
		s.removePhoto(r, photo)
		fail(w, r, err)
		return
	}

	created, err := s.store.CreateProduct(r.Context(), p)
	if err != nil {
		s.removePhoto(r, photo)
		fail(w, r, err)
		return
	}
	s.invalidateCatalog()
	slog.InfoContext(r.Context(), "Product created", "product_id", created.ID, "category", created.Category)
	respond(w, http.StatusCreated, "Product created Successfully", nil)
}

func (s *Server) handleLatestProducts(w http.ResponseWriter, r *http.Request) {
	products, ok := s.latest.Get(cacheKeyLatest)
	if !ok {
		var err error
		products, err = s.store.ListProducts(r.Context(), core.ProductFilter{Newest: true, Limit: latestProductCount})
		if err != nil {
			fail(w, r, err)
			return
		}
		s.latest.Set(cacheKeyLatest, products)
	}
	respond(w, http.StatusOK, "", envelope{"products": nonNil(products)})
}

func (s *Server) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := queryPage(q)
	f := core.ProductFilter{
		Search:   sanitizeInput(q.Get("search")),
		Category: core.NormalizeCategory(q.Get("category")),
		MaxPrice: queryFloat(q, "price"),
		Sort:     core.ParseSortOrder(q.Get("sort")),
		Limit:    s.perPage,
		Offset:   (page - 1) * s.perPage,
	}

	var (
		products []core.Product
		count    int
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		products, err = s.store.ListProducts(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		count, err = s.store.CountProducts(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		fail(w, r, err)
		return
	}

	totalPage := int(math.Ceil(float64(count) / float64(s.perPage)))
	respond(w, http.StatusOK, "", envelope{"products": nonNil(products), "totalPage": totalPage})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, ok := s.categories.Get(cacheKeyCategories)
	if !ok {
		var err error
		categories, err = s.store.ProductCategories(r.Context())
		if err != nil {
			fail(w, r, err)
			return
		}
		s.categories.Set(cacheKeyCategories, categories)
	}
	respond(w, http.StatusOK, "Categories Fetched Successfully", envelope{"categories": nonNil(categories)})
}

func (s *Server) handleAdminProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListProducts(r.Context(), core.ProductFilter{})
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, "", envelope{"products": nonNil(products)})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, notFoundAs(err, "Product not Found"))
		return
	}
	respond(w, http.StatusOK, "Product Fetched Successfully", envelope{"product": p})
}

// handleUpdateProduct applies the fields present in the form. A new photo
// replaces the stored file.
func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, notFoundAs(err, "Product not Found"))
		return
	}
	if err := parseMultipart(w, r); err != nil {
		fail(w, r, err)
		return
	}

	photo, err := s.savePhoto(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	if v := sanitizeInput(r.FormValue("name")); v != "" {
		p.Name = v
	}
	if v := core.NormalizeCategory(r.FormValue("category")); v != "" {
		p.Category = v
	}
	if v := strings.TrimSpace(r.FormValue("price")); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.removePhoto(r, photo)
			fail(w, r, badRequest("Invalid price"))
			return
		}
		p.Price = price
	}
	if v := strings.TrimSpace(r.FormValue("stock")); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil {
			s.removePhoto(r, photo)
			fail(w, r, badRequest("Invalid stock"))
			return
		}
		p.Stock = stock
	}

	oldPhoto := p.Photo
	if photo != "" {
		p.Photo = photo
	}
	if err := p.Validate(); err != nil {
		s.removePhoto(r, photo)
		fail(w, r, err)
		return
	}

	if _, err := s.store.UpdateProduct(r.Context(), p); err != nil {
		s.removePhoto(r, photo)
		fail(w, r, notFoundAs(err, "Product not Found"))
		return
	}
	if photo != "" {
		s.removePhoto(r, oldPhoto)
	}
	s.invalidateCatalog()
	respond(w, http.StatusOK, "Product updated Successfully", nil)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, err := s.store.GetProduct(r.Context(), id)
	if err != nil {
		fail(w, r, notFoundAs(err, "Product not Found"))
		return
	}
	if err := s.store.DeleteProduct(r.Context(), id); err != nil {
		fail(w, r, notFoundAs(err, "Product not Found"))
		return
	}
	s.removePhoto(r, p.Photo)
	s.invalidateCatalog()
	respond(w, http.StatusOK, "Product deleted Successfully", nil)
}

func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	err := r.ParseMultipartForm(maxUploadBody)
	var maxErr *http.MaxBytesError
	switch {
	case err == nil, errors.Is(err, http.ErrNotMultipart):
		return nil
	case errors.As(err, &maxErr):
		return httpError(http.StatusRequestEntityTooLarge, "Photo too large")
	default:
		return badRequest("Invalid form data")
	}
}

// savePhoto stores the "photo" form file under a fresh name and returns
// its public path, or "" when no file was sent.
func (s *Server) savePhoto(r *http.Request) (string, error) {
	file, header, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", badRequest("Invalid photo upload")
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedPhotoExt[ext] {
		return "", badRequest("Photo must be an image")
	}

	name := uuid.NewString() + ext
	if err := writeUpload(filepath.Join(s.uploadDir, name), file); err != nil {
		return "", fmt.Errorf("save photo: %w", err)
	}
	return "uploads/" + name, nil
}

func writeUpload(path string, src multipart.File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return err
	}
	return dst.Close()
}

// removePhoto deletes a stored upload. Failures are logged only.
func (s *Server) removePhoto(r *http.Request, photo string) {
	if photo == "" {
		return
	}
	path := filepath.Join(s.uploadDir, filepath.Base(photo))
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.WarnContext(r.Context(), "Failed to remove photo", "photo", photo, applog.FieldError, err)
	}
}
