package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left       key.Binding
	Right      key.Binding
	Up         key.Binding
	Down       key.Binding
	Add        key.Binding
	Category   key.Binding
	More       key.Binding
	Less       key.Binding
	Reset      key.Binding
	ToggleCart key.Binding
	Remove     key.Binding
	Checkout   key.Binding
	Retry      key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Add:        key.NewBinding(key.WithKeys("a", "enter"), key.WithHelp("a", "add to cart")),
		Category:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category")),
		More:       key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more")),
		Less:       key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "less")),
		Reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset filters")),
		ToggleCart: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "cart")),
		Remove:     key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		Checkout:   key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "checkout")),
		Retry:      key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "retry")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// modeHelp adapts the bindings relevant to one screen to help.KeyMap.
type modeHelp []key.Binding

func (h modeHelp) ShortHelp() []key.Binding  { return h }
func (h modeHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h} }

func (k keyMap) gridHelp() modeHelp {
	more, less := k.More, k.Less
	more.SetHelp("+", "max price +10")
	less.SetHelp("-", "max price -10")
	return modeHelp{k.Left, k.Right, k.Add, k.Category, more, less, k.Reset, k.ToggleCart, k.Quit}
}

func (k keyMap) cartHelp() modeHelp {
	more, less := k.More, k.Less
	more.SetHelp("+", "qty +1")
	less.SetHelp("-", "qty -1")
	return modeHelp{k.Up, k.Down, more, less, k.Remove, k.Checkout, k.ToggleCart, k.Quit}
}

func (k keyMap) failedHelp() modeHelp {
	return modeHelp{k.Retry, k.Quit}
}
