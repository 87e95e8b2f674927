// Package tui renders the storefront in a terminal.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/drstein77/shophub/internal/cart"
	"github.com/drstein77/shophub/internal/filter"
	"github.com/drstein77/shophub/internal/models"
)

// Catalog is the part of catalog.Store the terminal view uses.
type Catalog interface {
	Load(ctx context.Context) error
	Status() models.CatalogStatus
	Products() []models.Product
	Categories() []string
}

type catalogLoadedMsg struct {
	err error
}

// Model is the terminal storefront. Every intent goes through the filter
// and cart stores; the view is recomputed from them on each render.
type Model struct {
	ctx     context.Context
	catalog Catalog
	filter  *filter.State
	cart    *cart.Cart

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	styles  styles

	status   models.CatalogStatus
	cartOpen bool
	product  int
	row      int
	message  string
	width    int
}

// NewModel creates a model over catalog. ctx bounds the catalog fetch.
func NewModel(ctx context.Context, catalog Catalog) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		catalog: catalog,
		filter:  filter.New(),
		cart:    cart.New(),
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		styles:  defaultStyles(),
		status:  models.CatalogStatus{State: models.CatalogLoading},
		width:   100,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		return catalogLoadedMsg{err: m.catalog.Load(m.ctx)}
	}
}

// Cart exposes the cart for callers that inspect the session after exit.
func (m Model) Cart() *cart.Cart {
	return m.cart
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.status.State != models.CatalogLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case catalogLoadedMsg:
		m.status = m.catalog.Status()
		m.product = 0
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch m.status.State {
	case models.CatalogFailed:
		if key.Matches(msg, m.keys.Retry) && m.status.Retryable {
			m.status = models.CatalogStatus{State: models.CatalogLoading}
			m.message = ""
			return m, tea.Batch(m.spinner.Tick, m.load())
		}
		return m, nil
	case models.CatalogLoaded:
	default:
		return m, nil
	}

	m.message = ""
	if key.Matches(msg, m.keys.ToggleCart) {
		m.cartOpen = !m.cartOpen
		return m, nil
	}
	if m.cartOpen {
		return m.handleCartKey(msg)
	}
	return m.handleGridKey(msg)
}

func (m Model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visible()

	switch {
	case key.Matches(msg, m.keys.Left):
		if m.product > 0 {
			m.product--
		}
	case key.Matches(msg, m.keys.Right):
		if m.product < len(visible)-1 {
			m.product++
		}
	case key.Matches(msg, m.keys.Add):
		if m.product < len(visible) {
			p := visible[m.product]
			m.cart.Add(p)
			m.message = fmt.Sprintf("Added %s", p.Title)
		}
	case key.Matches(msg, m.keys.Category):
		m.filter.SetCategory(nextCategory(m.catalog.Categories(), m.filter.Current().Category))
		m.product = 0
	case key.Matches(msg, m.keys.More):
		m.filter.StepMaxPrice(1)
		m.product = 0
	case key.Matches(msg, m.keys.Less):
		m.filter.StepMaxPrice(-1)
		m.product = 0
	case key.Matches(msg, m.keys.Reset):
		m.filter.Reset()
		m.product = 0
	}
	return m, nil
}

func (m Model) handleCartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.cart.Entries()
	if key.Matches(msg, m.keys.Checkout) {
		m.message = "Checkout is not available"
		return m, nil
	}
	if len(entries) == 0 {
		return m, nil
	}
	if m.row >= len(entries) {
		m.row = len(entries) - 1
	}
	id := entries[m.row].Product.ID

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}
	case key.Matches(msg, m.keys.Down):
		if m.row < len(entries)-1 {
			m.row++
		}
	case key.Matches(msg, m.keys.More):
		m.cart.UpdateQuantity(id, 1)
	case key.Matches(msg, m.keys.Less):
		m.cart.UpdateQuantity(id, -1)
	case key.Matches(msg, m.keys.Remove):
		m.cart.Remove(id)
	}
	if n := m.cart.Len(); m.row >= n && n > 0 {
		m.row = n - 1
	}
	return m, nil
}

// nextCategory cycles "" -> categories[0] -> ... -> last -> "".
func nextCategory(categories []string, current string) string {
	if current == "" {
		if len(categories) == 0 {
			return ""
		}
		return categories[0]
	}
	for i, c := range categories {
		if c == current && i+1 < len(categories) {
			return categories[i+1]
		}
	}
	return ""
}

func (m Model) visible() []models.Product {
	return filter.Visible(m.catalog.Products(), m.filter.Current())
}

func (m Model) View() string {
	var b strings.Builder

	totals := m.cart.Totals()
	header := m.styles.Title.Render("ShopHub")
	if totals.TotalItems > 0 {
		header += "  " + m.styles.Badge.Render(fmt.Sprintf("Cart (%d)", totals.TotalItems))
	}
	b.WriteString(header + "\n\n")

	switch m.status.State {
	case models.CatalogFailed:
		b.WriteString(m.styles.Error.Render("Could not load products: "+m.status.Error) + "\n")
		if m.status.Retryable {
			b.WriteString(m.styles.Muted.Render("Press R to retry.") + "\n")
		}
		b.WriteString("\n" + m.help.View(m.keys.failedHelp()))
		return b.String()
	case models.CatalogLoaded:
	default:
		b.WriteString(m.spinner.View() + " Loading amazing products...\n")
		return b.String()
	}

	if m.cartOpen {
		b.WriteString(m.cartView())
	} else {
		b.WriteString(m.gridView())
	}

	if m.message != "" {
		b.WriteString("\n" + m.styles.Success.Render(m.message) + "\n")
	}

	keys := m.keys.gridHelp()
	if m.cartOpen {
		keys = m.keys.cartHelp()
	}
	b.WriteString("\n" + m.help.View(keys))
	return b.String()
}

func (m Model) gridView() string {
	var b strings.Builder
	f := m.filter.Current()

	category := f.Category
	if category == "" {
		category = "All categories"
	}
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("Category: %s  |  Max price: $%s", category, f.MaxPrice.StringFixed(2))) + "\n")

	visible := m.visible()
	noun := "products"
	if len(visible) == 1 {
		noun = "product"
	}
	b.WriteString(fmt.Sprintf("%d %s available\n", len(visible), noun))

	if len(visible) == 0 {
		b.WriteString("\nNo products match your filters. Press r to reset.\n")
		return b.String()
	}

	perRow := m.width / (cardWidth + 4)
	if perRow < 1 {
		perRow = 1
	}
	var row []string
	for i, p := range visible {
		row = append(row, m.card(p, i == m.product))
		if len(row) == perRow || i == len(visible)-1 {
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...) + "\n")
			row = row[:0]
		}
	}
	return b.String()
}

func (m Model) card(p models.Product, selected bool) string {
	style := m.styles.Card
	if selected {
		style = m.styles.Selected
	}
	title := p.Title
	if limit := cardWidth - 4; len([]rune(title)) > limit {
		title = string([]rune(title)[:limit-1]) + "…"
	}
	body := fmt.Sprintf("%s\n%s\n%s  ★ %.1f (%d)",
		title,
		m.styles.Price.Render("$"+p.Price.StringFixed(2)),
		m.styles.Muted.Render(p.Category),
		p.Rating.Rate, p.Rating.Count,
	)
	if q := m.cart.Quantity(p.ID); q > 0 {
		body += m.styles.Badge.Render(fmt.Sprintf("\nin cart: %d", q))
	}
	return style.Render(body)
}

func (m Model) cartView() string {
	var b strings.Builder
	entries := m.cart.Entries()
	totals := m.cart.Totals().Rounded()

	noun := "items"
	if totals.TotalItems == 1 {
		noun = "item"
	}
	b.WriteString(m.styles.Title.Render("Shopping Cart") + fmt.Sprintf("  %d %s in your cart\n\n", totals.TotalItems, noun))

	if len(entries) == 0 {
		b.WriteString("Your cart is empty\n")
		b.WriteString(m.styles.Muted.Render("Add some products to get started!") + "\n")
		return m.styles.Panel.Render(b.String())
	}

	for i, e := range entries {
		cursor := "  "
		if i == m.row {
			cursor = m.styles.Cursor.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%-40s x%-3d $%s\n", cursor, e.Product.Title, e.Quantity, e.LineTotal().StringFixed(2)))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Subtotal       $%s\n", totals.Subtotal.StringFixed(2)))
	b.WriteString(m.styles.Success.Render(fmt.Sprintf("Savings (10%%) -$%s", totals.Discount.StringFixed(2))) + "\n")
	b.WriteString(fmt.Sprintf("Total          $%s\n", totals.Total.StringFixed(2)))
	return m.styles.Panel.Render(b.String())
}
