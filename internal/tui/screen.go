package tui

// Panel ids.
const (
	panelMeal      = "meal"
	panelFavForm   = "fav-form"
	panelFavorites = "favorites"
	panelPopular   = "popular"
	panelConfirm   = "confirm"
	panelHelp      = "help"
)

var panelTitles = map[string]string{
	panelMeal:      "Meal",
	panelFavForm:   "Favorite store",
	panelFavorites: "Favorite stores",
	panelPopular:   "Popular dishes",
	panelConfirm:   "Confirm",
	panelHelp:      "Keys",
}

// screen tracks what the terminal shows. It implements panel.Surface.
type screen struct {
	visible      map[string]bool
	scroll       map[string]int
	backdrop     bool
	scrollLocked bool
}

func newScreen() *screen {
	return &screen{visible: make(map[string]bool), scroll: make(map[string]int)}
}

// HasPanel implements panel.Surface.
func (s *screen) HasPanel(id string) bool {
	_, ok := panelTitles[id]
	return ok
}

// ShowPanel implements panel.Surface.
func (s *screen) ShowPanel(id string) {
	s.visible[id] = true
	s.scroll[id] = 0
}

// HidePanel implements panel.Surface.
func (s *screen) HidePanel(id string) {
	delete(s.visible, id)
}

// ShowBackdrop implements panel.Surface.
func (s *screen) ShowBackdrop() { s.backdrop = true }

// HideBackdrop implements panel.Surface.
func (s *screen) HideBackdrop() { s.backdrop = false }

// LockScroll implements panel.Surface.
func (s *screen) LockScroll() { s.scrollLocked = true }

// UnlockScroll implements panel.Surface.
func (s *screen) UnlockScroll() { s.scrollLocked = false }
