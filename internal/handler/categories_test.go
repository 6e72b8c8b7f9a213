package handler

import (
	"net/http"
	"testing"
)

func TestListCategories(t *testing.T) {
	store := newMemStore()
	router := newTestRouter(store)

	seedProduct(t, router, "Classic", "Burgers", 250)
	seedProduct(t, router, "Fries", "Sides", 100)
	seedProduct(t, router, "Coke", "Beverages", 60)

	rec := doRequest(t, router, http.MethodGet, "/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	categories := decodeBody[[]categoryResponse](t, rec)
	want := []string{"Burgers", "Sides", "Beverages"}
	if len(categories) != len(want) {
		t.Fatalf("got %d categories, want %d", len(categories), len(want))
	}
	for i, name := range want {
		if categories[i].Name != name {
			t.Errorf("categories[%d] = %q, want %q", i, categories[i].Name, name)
		}
		if categories[i].SortOrder != int32(i) {
			t.Errorf("%s sort_order = %d, want %d", name, categories[i].SortOrder, i)
		}
	}
}

func TestReorderCategoriesEndpoint(t *testing.T) {
	store := newMemStore()
	router := newTestRouter(store)

	seedProduct(t, router, "Classic", "Burgers", 250)
	seedProduct(t, router, "Fries", "Sides", 100)
	seedProduct(t, router, "Coke", "Beverages", 60)

	rec := doRequest(t, router, http.MethodPost, "/categories/reorder", map[string]any{
		"dragged_name": "Burgers",
		"target_name":  "Beverages",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}

	categories := decodeBody[[]categoryResponse](t, doRequest(t, router, http.MethodGet, "/categories", nil))
	want := []string{"Sides", "Beverages", "Burgers"}
	for i, name := range want {
		if categories[i].Name != name {
			t.Fatalf("order after reorder: got %q at %d, want %v", categories[i].Name, i, want)
		}
	}

	rec = doRequest(t, router, http.MethodPost, "/categories/reorder", map[string]any{
		"dragged_name": "Pizza",
		"target_name":  "Sides",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown category: status = %d, want 404", rec.Code)
	}
}

func TestRenameCategoryEndpoint(t *testing.T) {
	store := newMemStore()
	router := newTestRouter(store)

	seedProduct(t, router, "Classic", "Burgers", 250)
	seedProduct(t, router, "Fries", "Sides", 100)

	rec := doRequest(t, router, http.MethodPut, "/categories/Burgers", map[string]any{"new_name": "Smash Burgers"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}

	// Products follow the rename.
	products := decodeBody[[]productResponse](t, doRequest(t, router, http.MethodGet, "/products", nil))
	for _, p := range products {
		if p.Name == "Classic" && p.Category != "Smash Burgers" {
			t.Errorf("product still in %q", p.Category)
		}
		if p.Name == "Fries" && p.Category != "Sides" {
			t.Errorf("unrelated product moved to %q", p.Category)
		}
	}

	rec = doRequest(t, router, http.MethodPut, "/categories/Pizza", map[string]any{"new_name": "Pies"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown category: status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPut, "/categories/Sides", map[string]any{"new_name": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank new name: status = %d, want 400", rec.Code)
	}
}

func TestRenameCategoryEndpoint_NameTaken(t *testing.T) {
	store := newMemStore()
	router := newTestRouter(store)

	seedProduct(t, router, "Classic", "Burgers", 250)
	seedProduct(t, router, "Fries", "Sides", 100)

	rec := doRequest(t, router, http.MethodPut, "/categories/Burgers", map[string]any{"new_name": "Sides"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteCategoryEndpoint(t *testing.T) {
	store := newMemStore()
	router := newTestRouter(store)

	seedProduct(t, router, "Classic", "Burgers", 250)
	seedProduct(t, router, "Cheese", "Burgers", 280)
	seedProduct(t, router, "Fries", "Sides", 100)

	rec := doRequest(t, router, http.MethodDelete, "/categories/Burgers", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204; body %s", rec.Code, rec.Body.String())
	}

	products := decodeBody[[]productResponse](t, doRequest(t, router, http.MethodGet, "/products", nil))
	if len(products) != 1 || products[0].Name != "Fries" {
		t.Errorf("cascade left wrong products: %+v", products)
	}
	categories := decodeBody[[]categoryResponse](t, doRequest(t, router, http.MethodGet, "/categories", nil))
	if len(categories) != 1 || categories[0].Name != "Sides" {
		t.Errorf("cascade left wrong categories: %+v", categories)
	}
	if categories[0].SortOrder != 0 {
		t.Errorf("surviving tab sort_order = %d, want 0", categories[0].SortOrder)
	}

	rec = doRequest(t, router, http.MethodDelete, "/categories/Burgers", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleting twice: status = %d, want 404", rec.Code)
	}
}
