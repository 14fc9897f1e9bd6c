package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mmynk/storefront/internal/models"
	"github.com/mmynk/storefront/internal/storage"
)

type catalogData struct {
	Category   string
	Categories []string
	Items      []*models.Item
}

type entriesData struct {
	Entries any
	Total   string
	Empty   string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category := r.URL.Query().Get("category")

	items, err := s.store.ListItems(ctx, storage.ItemFilter{Category: category})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.renderPage(w, r, http.StatusOK, "index", page{
		Title: "Products",
		Data:  catalogData{Category: category, Categories: categories, Items: items},
	})
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	item, err := s.store.GetItem(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.renderPage(w, r, http.StatusOK, "item", page{Title: item.Title, Data: item})
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListCart(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	subtotals := make([]float64, len(entries))
	for i, e := range entries {
		subtotals[i] = e.Subtotal()
	}
	s.renderPage(w, r, http.StatusOK, "entries", page{
		Title: "Cart",
		Data:  entriesData{Entries: entries, Total: sumPrices(subtotals), Empty: "Your cart is empty."},
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListHistory(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	subtotals := make([]float64, len(entries))
	for i, e := range entries {
		subtotals[i] = e.Subtotal()
	}
	s.renderPage(w, r, http.StatusOK, "entries", page{
		Title: "Purchase History",
		Data:  entriesData{Entries: entries, Total: sumPrices(subtotals), Empty: "No purchases yet."},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("Health check failed", "error", err)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}
