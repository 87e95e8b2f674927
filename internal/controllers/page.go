package controllers

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/drstein77/shophub/internal/filter"
	"github.com/drstein77/shophub/internal/models"
	"github.com/drstein77/shophub/internal/storage"
)

type pageData struct {
	Status     models.CatalogStatus
	Categories []string
	Filter     models.Filter
	Products   []models.Product
	Cart       storage.CartView
	MinPrice   decimal.Decimal
	PriceLimit decimal.Decimal
	PriceStep  decimal.Decimal
}

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return "$" + d.StringFixed(2) },
	"plural": func(n int, one, many string) string {
		if n == 1 {
			return one
		}
		return many
	},
}

var pageTmpl = template.Must(template.New("page").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>ShopHub</title></head>
<body>
<header><h1>ShopHub</h1>
<span>Cart: {{.Cart.Totals.TotalItems}} {{plural .Cart.Totals.TotalItems "item" "items"}}</span>
</header>
{{if eq .Status.State "loading" "idle"}}
<p>Loading amazing products...</p>
{{else if eq .Status.State "failed"}}
<div role="alert">
<p>Could not load products: {{.Status.Error}}</p>
{{if .Status.Retryable}}<form method="post" action="/ui/reload"><button>Retry</button></form>{{end}}
</div>
{{else}}
<aside>
<form method="post" action="/ui/filter">
<label>Category
<select name="category">
<option value="" {{if eq .Filter.Category ""}}selected{{end}}>All categories</option>
{{range .Categories}}<option value="{{.}}" {{if eq . $.Filter.Category}}selected{{end}}>{{.}}</option>
{{end}}</select></label>
<label>Max price {{money .Filter.MaxPrice}}
<input type="range" name="maxPrice" min="{{.MinPrice}}" max="{{.PriceLimit}}" step="{{.PriceStep}}" value="{{.Filter.MaxPrice}}"></label>
<button>Apply</button>
</form>
<form method="post" action="/ui/filter/reset"><button>Reset Filters</button></form>
</aside>
<main>
<h2>Discover Products</h2>
<p>{{len .Products}} {{plural (len .Products) "product" "products"}} available</p>
{{if not .Products}}<p>No products match your filters</p>{{end}}
{{range .Products}}
<article>
<img src="{{.Image}}" alt="{{.Title}}" width="120">
<h3>{{.Title}}</h3>
<p>{{.Category}} · {{.Rating.Rate}} ({{.Rating.Count}})</p>
<p>{{money .Price}}</p>
<form method="post" action="/ui/cart/add"><input type="hidden" name="id" value="{{.ID}}"><button>Add to Cart</button></form>
</article>
{{end}}
</main>
{{end}}
<section>
<h2>Shopping Cart</h2>
{{if not .Cart.Entries}}<p>Your cart is empty</p>{{else}}
{{range .Cart.Entries}}
<div>
<span>{{.Product.Title}}</span> <span>{{money .LineTotal}}</span>
<form method="post" action="/ui/cart/update"><input type="hidden" name="id" value="{{.Product.ID}}"><input type="hidden" name="delta" value="-1"><button>-</button></form>
<span>{{.Quantity}}</span>
<form method="post" action="/ui/cart/update"><input type="hidden" name="id" value="{{.Product.ID}}"><input type="hidden" name="delta" value="1"><button>+</button></form>
<form method="post" action="/ui/cart/remove"><input type="hidden" name="id" value="{{.Product.ID}}"><button>Remove</button></form>
</div>
{{end}}
<p>Subtotal {{money .Cart.Totals.Subtotal}}</p>
<p>Savings (10%) -{{money .Cart.Totals.Discount}}</p>
<p>Total {{money .Cart.Totals.Total}}</p>
<button disabled>Proceed to Checkout</button>
{{end}}
</section>
</body>
</html>
`))

func (h *BaseController) page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := pageData{
		Status:     h.storage.Status(ctx),
		Categories: h.storage.Categories(ctx),
		Filter:     h.storage.Filter(ctx),
		Products:   h.storage.VisibleProducts(ctx),
		Cart:       h.storage.Cart(ctx),
		MinPrice:   filter.MinPrice,
		PriceLimit: filter.DefaultPrice,
		PriceStep:  filter.PriceStep,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		h.log.Error("Failed to render page", zap.Error(err))
	}
}

func (h *BaseController) formReload(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Reload(r.Context()); err != nil {
		h.log.Info("Reload rejected", zap.Error(err))
	}
	redirectHome(w, r)
}

func (h *BaseController) formFilter(w http.ResponseWriter, r *http.Request) {
	category := r.FormValue("category")
	var maxPrice *decimal.Decimal
	if v := r.FormValue("maxPrice"); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			http.Error(w, "invalid max price", http.StatusBadRequest)
			return
		}
		maxPrice = &p
	}
	h.storage.UpdateFilter(r.Context(), &category, maxPrice)
	redirectHome(w, r)
}

func (h *BaseController) formResetFilter(w http.ResponseWriter, r *http.Request) {
	h.storage.ResetFilter(r.Context())
	redirectHome(w, r)
}

func (h *BaseController) formAdd(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.FormValue("id"))
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}
	if _, err := h.storage.AddToCart(r.Context(), id); err != nil {
		h.writeStorageError(w, err)
		return
	}
	redirectHome(w, r)
}

func (h *BaseController) formUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.FormValue("id"))
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}
	delta, err := strconv.Atoi(r.FormValue("delta"))
	if err != nil {
		http.Error(w, "invalid quantity change", http.StatusBadRequest)
		return
	}
	h.storage.UpdateQuantity(r.Context(), id, delta)
	redirectHome(w, r)
}

func (h *BaseController) formRemove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.FormValue("id"))
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}
	h.storage.RemoveFromCart(r.Context(), id)
	redirectHome(w, r)
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
