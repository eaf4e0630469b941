// Package tui is the terminal front end of the food diary. It binds the
// autocomplete widgets and the panel manager to bubbletea components.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/runger/fooddiary/internal/autocomplete"
	"github.com/runger/fooddiary/internal/candidate"
	"github.com/runger/fooddiary/internal/cmdutil"
	"github.com/runger/fooddiary/internal/config"
	"github.com/runger/fooddiary/internal/diary"
	"github.com/runger/fooddiary/internal/panel"
	"github.com/runger/fooddiary/internal/storage"
)

// Autocomplete registry ids.
const (
	acMealRestaurant = "meal.restaurant"
	acMealBranch     = "meal.branch"
	acFavName        = "fav.name"
)

// dateInputLayout is what the meal form pre-fills for a new meal.
const dateInputLayout = "2006-01-02T15:04"

// initMsg triggers the diary load from inside Update.
type initMsg struct{}

// Options configures the terminal UI.
type Options struct {
	// KV stores the diary. Required.
	KV storage.KV
	// Config supplies locale, debounce and toast settings. Default
	// config.DefaultConfig().
	Config *config.Config
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Context bounds storage calls. Default context.Background().
	Context context.Context
	// ServiceOptions are passed to diary.NewService after the UI's own.
	ServiceOptions []diary.Option

	// now and tick replace time.Now and tea.Tick in tests.
	now  func() time.Time
	tick tickFunc
}

// pendingAction is a destructive action waiting for confirmation.
type pendingAction struct {
	prompt string
	done   string
	run    func() error
}

// Model is the bubbletea model of the diary UI.
type Model struct {
	ctx    context.Context
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time

	svc      *diary.Service
	screen   *screen
	history  *panel.MemoryHistory
	panels   *panel.Manager
	registry *autocomplete.Registry
	sched    *tickScheduler
	toast    *toaster

	mealForm    *form
	favForm     *form
	editingMeal string // "" while adding
	editingFav  string
	mealRecs    []diary.Recommendation
	favRecs     []diary.Recommendation
	confirm     *pendingAction

	cursor int // Selected meal row

	width  int
	height int
}

// New builds the model and its diary service. The diary is loaded when
// the program starts.
func New(opts Options) (*Model, error) {
	if opts.KV == nil {
		return nil, errors.New("tui: storage is required")
	}
	m := &Model{
		ctx:    opts.Context,
		cfg:    opts.Config,
		logger: opts.Logger,
		now:    opts.now,
	}
	if m.ctx == nil {
		m.ctx = context.Background()
	}
	if m.cfg == nil {
		m.cfg = config.DefaultConfig()
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.now == nil {
		m.now = time.Now
	}

	m.sched = newTickScheduler(opts.tick)
	m.toast = newToaster(m.cfg.ToastDuration(), opts.tick)

	svcOpts := append([]diary.Option{
		diary.WithLogger(m.logger),
		diary.WithNotifier(m.toast),
		diary.WithClock(m.now),
	}, opts.ServiceOptions...)
	m.svc = diary.NewService(opts.KV, svcOpts...)

	m.screen = newScreen()
	m.history = panel.NewMemoryHistory()
	mgr, err := panel.NewManager(m.screen, m.history, m.logger)
	if err != nil {
		return nil, err
	}
	m.panels = mgr
	m.panels.OnPanelChange(m.onPanelChange)

	m.registry = autocomplete.NewRegistry(m.logger)
	if err := m.buildForms(); err != nil {
		return nil, err
	}
	return m, nil
}

// Service returns the diary service behind the UI.
func (m *Model) Service() *diary.Service {
	return m.svc
}

func (m *Model) buildForms() error {
	width := m.cfg.UI.MaxItemWidth
	opts := candidate.Options{Less: candidate.CollatorLess(m.cfg.UI.Locale)}
	snap := candidate.Snapshot(m.svc.Snapshot)

	restaurant := newField("restaurant", "Restaurant", "e.g. 鼎泰豐", width)
	branch := newField("branch", "Branch", "optional", width)
	m.mealForm = &form{fields: []*field{
		restaurant,
		branch,
		newField("date", "Date", "YYYY-MM-DDTHH:MM", width),
		newField("menu", "Menu", `name="牛肉麵" price=180 amount=1`, width*2),
		newField("img", "Image", "URL, optional", width*2),
	}}
	if err := m.bind(acMealRestaurant, restaurant, candidate.Restaurants(snap, opts), candidate.FieldName, m.onRestaurantSelected); err != nil {
		return err
	}
	if err := m.bind(acMealBranch, branch, candidate.Branches(snap, restaurant.Value, opts), candidate.FieldBranch, nil); err != nil {
		return err
	}

	name := newField("name", "Name", "restaurant name", width)
	m.favForm = &form{fields: []*field{
		name,
		newField("branch", "Branch", "optional", width),
		newField("address", "Address", "optional", width*2),
		newField("notes", "Notes", "optional", width*2),
		newField("menu", "Menu", `name="小籠包" price=250`, width*2),
	}}
	return m.bind(acFavName, name, candidate.FrequentRestaurants(snap, opts), candidate.FieldName, m.onFavNameSelected)
}

func (m *Model) bind(id string, f *field, src candidate.Source, display string, onSelect autocomplete.SelectFunc) error {
	f.list = newSuggestionList(m.cfg.UI.MaxItemWidth)
	ac, err := m.registry.Register(id, autocomplete.Config{
		Input:           f,
		List:            f.list,
		Source:          src,
		DisplayField:    display,
		Template:        candidateLabel(display),
		OnSelect:        onSelect,
		DebounceDelay:   m.cfg.Debounce(),
		EmptyQueryLimit: m.cfg.AutoComplete.EmptyQueryLimit,
		Scheduler:       m.sched,
	})
	if err != nil {
		return fmt.Errorf("binding %s: %w", id, err)
	}
	f.ac = ac
	return nil
}

func candidateLabel(display string) autocomplete.Template {
	return func(c candidate.Candidate) string {
		label, _ := c.Field(display)
		if c.IsFavorite {
			label += " ★"
		}
		if c.Count > 0 {
			label += fmt.Sprintf("  ×%d", c.Count)
		}
		return label
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return func() tea.Msg { return initMsg{} }
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case initMsg:
		m.svc.Load(m.ctx)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case debounceMsg:
		m.sched.Fire(msg)

	case toastExpiredMsg:
		m.toast.Expire(msg)

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))
	}

	cmds = append(cmds, m.sched.Drain(), m.toast.Flush())
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	if msg.Alt && msg.Type == tea.KeyLeft {
		m.back()
		return nil
	}

	top, open := m.panels.Top()
	if !open {
		return m.handleMainKey(msg)
	}
	switch top {
	case panelMeal:
		return m.handleFormKey(msg, m.mealForm, m.saveMeal, m.addMealRecommendation)
	case panelFavForm:
		return m.handleFormKey(msg, m.favForm, m.saveFavStore, m.addFavRecommendation)
	case panelFavorites:
		return m.handleFavoritesKey(msg)
	case panelConfirm:
		m.handleConfirmKey(msg)
		return nil
	}

	// Read-only panels.
	switch msg.String() {
	case "esc":
		m.panels.HandleKey(panel.KeyEscape)
	case "backspace":
		m.back()
	case "q":
		m.panels.CloseTopmost()
	case "up", "k":
		if m.screen.scroll[top] > 0 {
			m.screen.scroll[top]--
		}
	case "down", "j":
		m.screen.scroll[top]++
	}
	return nil
}

// back acts like a browser back navigation.
func (m *Model) back() {
	panel.GoBack(m.history, m.panels)
}

func (m *Model) handleMainKey(msg tea.KeyMsg) tea.Cmd {
	logs := m.svc.State().MealLogs
	switch msg.String() {
	case "q":
		return tea.Quit
	case "up", "k":
		if !m.screen.scrollLocked && m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if !m.screen.scrollLocked && m.cursor < len(logs)-1 {
			m.cursor++
		}
	case "a":
		return m.openMealForm(diary.MealLog{})
	case "enter", "e":
		if meal, ok := m.selectedMeal(); ok {
			return m.openMealForm(meal)
		}
	case "c":
		if meal, ok := m.selectedMeal(); ok {
			cp, err := m.svc.CopyMeal(m.ctx, meal.ID)
			if err == nil {
				m.toast.Notify("Copied " + cp.Restaurant)
				m.selectMeal(cp.ID)
			}
		}
	case "d":
		if meal, ok := m.selectedMeal(); ok {
			m.confirmThen(
				fmt.Sprintf("Delete %s on %s?", meal.Restaurant, diary.FormatROC(meal.Date, true)),
				"Deleted",
				func() error { return m.svc.DeleteMeal(m.ctx, meal.ID) },
			)
		}
	case "X":
		if len(logs) > 0 {
			m.confirmThen("Delete every meal log?", "Cleared", func() error { return m.svc.ClearMeals(m.ctx) })
		}
	case "f":
		m.panels.Open(panelFavorites)
	case "p":
		m.panels.Open(panelPopular)
	case "?":
		m.panels.Open(panelHelp)
	}
	return nil
}

func acKey(msg tea.KeyMsg) (autocomplete.Key, bool) {
	switch msg.Type {
	case tea.KeyUp:
		return autocomplete.KeyUp, true
	case tea.KeyDown:
		return autocomplete.KeyDown, true
	case tea.KeyEnter:
		return autocomplete.KeyEnter, true
	case tea.KeyEsc:
		return autocomplete.KeyEscape, true
	}
	return 0, false
}

func (m *Model) handleFormKey(msg tea.KeyMsg, f *form, save func(), recommend func()) tea.Cmd {
	cur := f.focused()
	if cur == nil {
		return nil
	}
	// Open suggestions get navigation keys first.
	if cur.ac != nil && cur.ac.State() == autocomplete.Showing {
		if k, ok := acKey(msg); ok && cur.ac.HandleKey(k) {
			return nil
		}
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.panels.HandleKey(panel.KeyEscape)
		return nil
	case tea.KeyTab, tea.KeyDown:
		return f.next()
	case tea.KeyShiftTab, tea.KeyUp:
		return f.prev()
	case tea.KeyCtrlS:
		save()
		return nil
	case tea.KeyCtrlR:
		recommend()
		return nil
	case tea.KeyEnter:
		if f.focus == len(f.fields)-1 {
			save()
			return nil
		}
		return f.next()
	}

	before := cur.Value()
	var cmd tea.Cmd
	cur.input, cmd = cur.input.Update(msg)
	if after := cur.Value(); after != before {
		if cur.ac != nil {
			cur.ac.HandleInput(after)
		}
		switch {
		case f == m.mealForm && cur.id == "restaurant":
			m.updateMealRecs()
		case f == m.favForm && (cur.id == "name" || cur.id == "menu"):
			m.updateFavRecs()
		}
	}
	return cmd
}

func (m *Model) handleFavoritesKey(msg tea.KeyMsg) tea.Cmd {
	st := m.svc.State()
	idx := m.screen.scroll[panelFavorites]
	switch msg.String() {
	case "esc":
		m.panels.HandleKey(panel.KeyEscape)
	case "backspace":
		m.back()
	case "up", "k":
		if idx > 0 {
			m.screen.scroll[panelFavorites] = idx - 1
		}
	case "down", "j":
		if idx < len(st.FavStores)-1 {
			m.screen.scroll[panelFavorites] = idx + 1
		}
	case "n":
		return m.openFavForm(diary.FavStore{})
	case "+":
		if recs := diary.RecommendedFavStores(st.MealLogs, st.FavStores); len(recs) > 0 {
			return m.openFavForm(diary.FavStore{Name: recs[0].Name})
		}
	case "enter", "e":
		if idx < len(st.FavStores) {
			return m.openFavForm(st.FavStores[idx])
		}
	case "d":
		if idx < len(st.FavStores) {
			store := st.FavStores[idx]
			m.confirmThen("Remove "+store.Name+" from favorites?", "Removed", func() error {
				return m.svc.DeleteFavStore(m.ctx, store.ID)
			})
		}
	}
	return nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "y", "enter":
		action := m.confirm
		m.panels.Close(panelConfirm)
		if action == nil {
			return
		}
		if err := action.run(); err != nil {
			m.logger.Warn("confirmed action failed", "prompt", action.prompt, "error", err)
			return
		}
		m.toast.Notify(action.done)
		m.clampCursor()
	case "n", "esc", "q":
		m.panels.HandleKey(panel.KeyEscape)
	}
}

func (m *Model) confirmThen(prompt, done string, run func() error) {
	m.confirm = &pendingAction{prompt: prompt, done: done, run: run}
	m.panels.Open(panelConfirm)
}

func (m *Model) onPanelChange(c panel.Change) {
	m.logger.Debug("panel change", "panel", c.ID, "open", c.Open, "stack", c.Stack)
	if c.Open {
		return
	}
	switch c.ID {
	case panelMeal:
		m.mealForm.blur()
	case panelFavForm:
		m.favForm.blur()
	case panelConfirm:
		m.confirm = nil
	}
}

func (m *Model) openMealForm(meal diary.MealLog) tea.Cmd {
	m.mealForm.reset()
	date := meal.Date
	if date == "" {
		date = m.now().Local().Format(dateInputLayout)
	}
	menu := ""
	if len(meal.Menu) > 0 {
		menu = cmdutil.FormatMenu(meal.Menu)
	}
	m.mealForm.set(map[string]string{
		"restaurant": meal.Restaurant,
		"branch":     meal.Branch,
		"date":       date,
		"menu":       menu,
		"img":        meal.Img,
	})
	m.editingMeal = meal.ID
	m.updateMealRecs()
	m.panels.Open(panelMeal)
	return m.mealForm.focusIndex(0)
}

func (m *Model) openFavForm(store diary.FavStore) tea.Cmd {
	m.favForm.reset()
	menu := ""
	if len(store.MenuItems) > 0 {
		menu = cmdutil.FormatFavMenu(store.MenuItems)
	}
	m.favForm.set(map[string]string{
		"name":    store.Name,
		"branch":  store.Branch,
		"address": store.Address,
		"notes":   store.Notes,
		"menu":    menu,
	})
	m.editingFav = store.ID
	m.updateFavRecs()
	m.panels.Open(panelFavForm)
	return m.favForm.focusIndex(0)
}

// onRestaurantSelected refreshes everything that depends on the chosen
// restaurant: branch suggestions and menu recommendations.
func (m *Model) onRestaurantSelected(value string, _ map[string]string) {
	m.mealForm.field("branch").SetValue("")
	m.updateMealRecs()
	m.mealForm.focusIndex(1)
	m.registry.Refresh(acMealBranch, "")
}

func (m *Model) onFavNameSelected(string, map[string]string) {
	m.updateFavRecs()
}

func (m *Model) updateMealRecs() {
	st := m.svc.State()
	m.mealRecs = diary.MenuRecommendations(&st, m.mealForm.field("restaurant").Value())
}

func (m *Model) updateFavRecs() {
	existing, _ := cmdutil.ParseFavMenu(m.favForm.field("menu").Value())
	m.favRecs = diary.FavMenuRecommendations(m.svc.State().MealLogs, m.favForm.field("name").Value(), existing, 5)
}

// addMealRecommendation appends the first recommended dish that is not on
// the menu yet.
func (m *Model) addMealRecommendation() {
	menuField := m.mealForm.field("menu")
	menu, err := currentMenu(menuField.Value())
	if err != nil {
		m.toast.Notify("Menu: " + err.Error())
		return
	}
	have := make(map[string]bool, len(menu))
	for _, it := range menu {
		have[it.Name] = true
	}
	for _, rec := range m.mealRecs {
		if !have[rec.Name] {
			menu = append(menu, diary.MenuItem{Name: rec.Name, Price: rec.Price, Amount: 1})
			menuField.SetValue(cmdutil.FormatMenu(menu))
			return
		}
	}
}

func (m *Model) addFavRecommendation() {
	menuField := m.favForm.field("menu")
	menu, err := currentMenu(menuField.Value())
	if err != nil {
		m.toast.Notify("Menu: " + err.Error())
		return
	}
	if len(m.favRecs) == 0 {
		return
	}
	rec := m.favRecs[0]
	items := make([]diary.FavMenuItem, 0, len(menu)+1)
	for _, it := range menu {
		items = append(items, diary.FavMenuItem{Name: it.Name, Price: it.Price})
	}
	items = append(items, diary.FavMenuItem{Name: rec.Name, Price: rec.Price})
	menuField.SetValue(cmdutil.FormatFavMenu(items))
	m.updateFavRecs()
}

// currentMenu parses a menu field, treating a blank field as empty.
func currentMenu(text string) ([]diary.MenuItem, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return cmdutil.ParseMenu(text)
}

func (m *Model) saveMeal() {
	f := m.mealForm
	menu, err := cmdutil.ParseMenu(f.field("menu").Value())
	if err != nil {
		m.toast.Notify("Menu: " + err.Error())
		return
	}
	img := strings.TrimSpace(f.field("img").Value())
	if strings.Contains(img, "drive.google.com") {
		if direct, err := diary.DriveImageURL(img); err == nil {
			img = direct
		}
	}
	if img != "" {
		if err := diary.ValidateImageURL(img); err != nil {
			m.toast.Notify(err.Error())
			return
		}
	}

	saved, err := m.svc.SaveMeal(m.ctx, diary.MealLog{
		ID:         m.editingMeal,
		Restaurant: f.field("restaurant").Value(),
		Branch:     f.field("branch").Value(),
		Date:       f.field("date").Value(),
		Menu:       menu,
		Img:        img,
	})
	if err != nil {
		// Storage failures are reported by the service.
		if errors.Is(err, diary.ErrInvalidMeal) {
			m.toast.Notify(err.Error())
		}
		return
	}
	m.toast.Notify("Saved " + saved.Restaurant)
	m.panels.Close(panelMeal)
	m.selectMeal(saved.ID)
}

func (m *Model) saveFavStore() {
	f := m.favForm
	menu, err := cmdutil.ParseFavMenu(f.field("menu").Value())
	if err != nil {
		m.toast.Notify("Menu: " + err.Error())
		return
	}
	saved, err := m.svc.SaveFavStore(m.ctx, diary.FavStore{
		ID:        m.editingFav,
		Name:      f.field("name").Value(),
		Branch:    f.field("branch").Value(),
		Address:   f.field("address").Value(),
		Notes:     f.field("notes").Value(),
		MenuItems: menu,
	})
	if err != nil {
		if errors.Is(err, diary.ErrInvalidStore) {
			m.toast.Notify(err.Error())
		}
		return
	}
	m.toast.Notify("Saved " + saved.Name)
	m.panels.Close(panelFavForm)
}

func (m *Model) selectedMeal() (diary.MealLog, bool) {
	logs := m.svc.State().MealLogs
	if m.cursor < 0 || m.cursor >= len(logs) {
		return diary.MealLog{}, false
	}
	return logs[m.cursor], true
}

func (m *Model) selectMeal(id string) {
	for i, meal := range m.svc.State().MealLogs {
		if meal.ID == id {
			m.cursor = i
			return
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.svc.State().MealLogs)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if idx := m.screen.scroll[panelFavorites]; idx >= len(m.svc.State().FavStores) && idx > 0 {
		m.screen.scroll[panelFavorites] = idx - 1
	}
}

// Run starts the UI on in and out and blocks until the user quits.
func Run(opts Options, in io.Reader, out io.Writer) error {
	m, err := New(opts)
	if err != nil {
		return err
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
