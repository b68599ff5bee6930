package tui

import (
	"context"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/zapweb/internal/api"
	"github.com/matheus3301/zapweb/internal/bus"
	"github.com/matheus3301/zapweb/internal/chatlist"
	"github.com/matheus3301/zapweb/internal/model"
	"github.com/matheus3301/zapweb/internal/stories"
	"github.com/matheus3301/zapweb/internal/store"
	"github.com/matheus3301/zapweb/internal/tui/keys"
	"github.com/matheus3301/zapweb/internal/tui/ui"
	"github.com/matheus3301/zapweb/internal/tui/views"
	"github.com/matheus3301/zapweb/internal/unread"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// Deps bundles everything the shell needs.
type Deps struct {
	Bus          *bus.Bus
	API          *api.Client
	Roster       *chatlist.Roster
	Tracker      *unread.Tracker
	Stories      *stories.Viewer
	Store        *store.DB
	Logger       *zap.Logger
	ProfileName  string
	PollInterval time.Duration
}

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	pages    *tview.Pages
	registry *keys.Registry
	theme    *ui.Theme

	statusBar   *views.StatusBar
	convList    *views.ConversationList
	filterInput *tview.InputField
	msgPane     *views.MessagePane
	composer    *views.Composer
	storyPane   *views.StoryPane
	authView    *views.AuthView

	deps   Deps
	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(deps Deps) *App {
	ctx, cancel := context.WithCancel(context.Background())
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.PollInterval <= 0 {
		deps.PollInterval = 30 * time.Second
	}
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		registry:  keys.NewRegistry(),
		theme:     theme,
		statusBar: views.NewStatusBar(),
		convList:  views.NewConversationList(theme),
		composer:  views.NewComposer(theme),
		storyPane: views.NewStoryPane(theme),
		authView:  views.NewAuthView(theme),
		deps:      deps,
		ctx:       ctx,
		cancel:    cancel,
	}
	a.msgPane = views.NewMessagePane(theme, deps.Tracker.MessageViewed)

	a.filterInput = tview.NewInputField().
		SetLabel(" / ").
		SetFieldWidth(0)
	a.filterInput.SetBackgroundColor(theme.BgColor)
	a.filterInput.SetFieldBackgroundColor(theme.BgColor)
	a.filterInput.SetFieldTextColor(theme.FgColor)
	a.filterInput.SetLabelColor(theme.MenuKeyColor)

	a.statusBar.SetProfile(deps.ProfileName)
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("quit", &keys.Action{
		Rune: 'q', Key: tcell.KeyRune,
		Description: "q:quit", Visible: true,
		Handler: func() { a.app.Stop() },
	})
	a.registry.AddScope("chats", "unread-filter", &keys.Action{
		Rune: 'u', Key: tcell.KeyRune,
		Description: "u:unread", Visible: true,
		Handler: func() { a.convList.ToggleUnreadOnly() },
	})
	a.registry.AddScope("chats", "filter", &keys.Action{
		Rune: '/', Key: tcell.KeyRune,
		Description: "/:filter", Visible: true,
		Handler: func() { a.app.SetFocus(a.filterInput) },
	})
	a.registry.AddScope("chats", "stories", &keys.Action{
		Rune: 't', Key: tcell.KeyRune,
		Description: "t:status", Visible: true,
		Handler: func() { a.showStories() },
	})
	a.registry.AddScope("stories", "next", &keys.Action{
		Key:         tcell.KeyRight,
		Description: "→:next", Visible: true,
		Handler: func() { a.deps.Stories.Next() },
	})
	a.registry.AddScope("stories", "prev", &keys.Action{
		Key:         tcell.KeyLeft,
		Description: "←:prev", Visible: true,
		Handler: func() { a.deps.Stories.Prev() },
	})
	a.registry.AddScope("stories", "video-done", &keys.Action{
		Rune: ' ', Key: tcell.KeyRune,
		Description: "space:done", Visible: true,
		Handler: func() { a.deps.Stories.VideoEnded() },
	})
}

func (a *App) setupCallbacks() {
	a.convList.SetSelectedFunc(func(row, col int) {
		if id := a.convList.SelectedConversation(); id != "" {
			a.openConversation(id)
		}
	})
	a.storyPane.SetSelectedFunc(func(contactID string) {
		a.deps.Stories.Select(contactID)
	})
	a.composer.SetOnSubmit(func(string) {
		// Sending is out of scope for this client.
		a.statusBar.SetFlash("sending is not supported")
	})
	a.filterInput.SetChangedFunc(func(text string) {
		a.convList.SetFilter(text)
	})
	a.filterInput.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			a.filterInput.SetText("")
			a.convList.ClearFilter()
		}
		a.app.SetFocus(a.convList)
	})
}

func (a *App) setupLayout() {
	chatsFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.convList, 0, 1, true).
		AddItem(a.filterInput, 1, 0, false)

	chatFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.msgPane, 0, 1, true).
		AddItem(a.composer, 3, 0, false)

	a.pages.AddPage("chats", chatsFlex, true, true)
	a.pages.AddPage("chat", chatFlex, true, false)
	a.pages.AddPage("stories", a.storyPane, true, false)
	a.pages.AddPage("auth", a.authView, true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)
	a.statusBar.SetHints(strings.Join(a.registry.Hints("chats"), "  "))

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		currentPage, _ := a.pages.GetFrontPage()

		if event.Key() == tcell.KeyEscape {
			switch currentPage {
			case "chat":
				a.closeConversation()
				return nil
			case "stories":
				if id, _ := a.deps.Stories.Selected(); id != "" {
					a.deps.Stories.CloseGroup()
				} else {
					a.switchPage("chats")
					a.app.SetFocus(a.convList)
				}
				return nil
			case "auth":
				a.switchPage("chats")
				a.app.SetFocus(a.convList)
				return nil
			}
		}

		if _, ok := a.app.GetFocus().(*tview.InputField); ok {
			return event
		}

		// 'i' focuses the composer when reading a conversation.
		if currentPage == "chat" && event.Key() == tcell.KeyRune && event.Rune() == 'i' {
			a.app.SetFocus(a.composer.InputField)
			return nil
		}

		if a.registry.HandleEvent(currentPage, event) {
			return nil
		}
		return event
	})
}

// switchPage flips the visible page and refreshes the key hints for it.
func (a *App) switchPage(name string) {
	a.pages.SwitchToPage(name)
	a.statusBar.SetHints(strings.Join(a.registry.Hints(name), "  "))
}

// openConversation activates a conversation. The badge is left alone
// here: the tracker's count sync drives it down as backlog
// confirmations arrive, and it reaches zero only through that path.
func (a *App) openConversation(id string) {
	conv := a.findConversation(id)
	a.deps.Roster.SetActive(id)
	a.deps.Tracker.Open(a.ctx, conv)

	name := conv.Name
	if name == "" {
		name = id
	}
	a.msgPane.SetConversationName(name)
	a.msgPane.Update(nil, "")
	a.switchPage("chat")
	a.app.SetFocus(a.msgPane)
}

func (a *App) closeConversation() {
	a.deps.Tracker.Close()
	a.deps.Roster.SetActive("")
	a.switchPage("chats")
	a.convList.Update(a.deps.Roster.Conversations())
	a.app.SetFocus(a.convList)
}

func (a *App) showStories() {
	a.switchPage("stories")
	a.renderStories()
	a.app.SetFocus(a.storyPane.GroupList())
}

func (a *App) renderStories() {
	groups := a.deps.Stories.Groups()
	a.storyPane.UpdateGroups(groups, a.deps.Stories.UnreadCount)

	contactID, index := a.deps.Stories.Selected()
	var current *model.ContactStatusGroup
	for i := range groups {
		if groups[i].ContactID == contactID {
			current = &groups[i]
			break
		}
	}
	a.storyPane.ShowCurrent(current, index)
}

func (a *App) renderThread() {
	a.msgPane.Update(a.deps.Tracker.Messages(), a.deps.Tracker.Anchor())
	if anchor, ok := a.deps.Tracker.ConsumeInitialScroll(); ok {
		a.msgPane.ScrollToAnchor(anchor)
	}
}

func (a *App) findConversation(id string) model.Conversation {
	for _, c := range a.deps.Roster.Conversations() {
		if c.ID == id {
			return c
		}
	}
	if a.deps.Store != nil {
		if cached, err := a.deps.Store.GetConversation(id); err == nil && cached != nil {
			return *cached
		}
	}
	return model.Conversation{ID: id}
}

// persistThread caches a fetched backlog so the thread survives the
// backend going away.
func (a *App) persistThread(msgs []model.Message) {
	if a.deps.Store == nil {
		return
	}
	for i := range msgs {
		if err := a.deps.Store.UpsertMessage(&msgs[i]); err != nil {
			a.deps.Logger.Warn("cache message failed",
				zap.String("message", msgs[i].ID), zap.Error(err))
			return
		}
	}
}

// cachedThread reads the cached backlog for a conversation.
func (a *App) cachedThread(conversationID string) []model.Message {
	if a.deps.Store == nil {
		return nil
	}
	msgs, err := a.deps.Store.ListMessages(conversationID, 500)
	if err != nil {
		a.deps.Logger.Warn("read message cache failed",
			zap.String("conversation", conversationID), zap.Error(err))
		return nil
	}
	return msgs
}

// Run starts the TUI application.
func (a *App) Run() error {
	go a.eventLoop()
	go a.refreshLoop()
	go a.tickLoop()
	go a.initialLoad()
	return a.app.Run()
}

// tickLoop repaints the status bar so the clock advances and expired
// flash messages drop off.
func (a *App) tickLoop() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.app.QueueUpdateDraw(a.statusBar.Refresh)
		case <-a.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

// initialLoad seeds the roster from the local cache so the list paints
// before the first poll answers, then polls.
func (a *App) initialLoad() {
	if a.deps.Store != nil {
		if cached, err := a.deps.Store.ListConversations(200); err == nil && len(cached) > 0 {
			a.deps.Roster.Load(cached)
			a.app.QueueUpdateDraw(func() {
				a.convList.Update(a.deps.Roster.Conversations())
			})
		}
	}
	a.refreshOnce()
}

func (a *App) refreshLoop() {
	ticker := time.NewTicker(a.deps.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.refreshOnce()
		case <-a.ctx.Done():
			return
		}
	}
}

// refreshOnce polls the backend for roster, statuses and health. The
// roster load replaces local state, so the server list stays the
// authority for unread counts between live deltas.
func (a *App) refreshOnce() {
	status := a.deps.API.Status(a.ctx)

	convs, err := a.deps.API.FetchConversations(a.ctx)
	if err != nil {
		a.deps.Logger.Warn("conversation poll failed", zap.Error(err))
	} else {
		a.deps.Roster.Load(convs)
	}

	statuses, err := a.deps.API.FetchStatuses(a.ctx)
	if err != nil {
		a.deps.Logger.Warn("status poll failed", zap.Error(err))
	} else {
		a.deps.Stories.Load(statuses)
	}

	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetStatus(status)
		a.convList.Update(a.deps.Roster.Conversations())
	})
}

// eventLoop drains the bus and repaints the views that care.
func (a *App) eventLoop() {
	ch, unsub := a.deps.Bus.Subscribe("", 256)
	defer unsub()

	for {
		select {
		case evt := <-ch:
			a.handleEvent(evt)
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case "chatlist.updated":
		a.app.QueueUpdateDraw(func() {
			a.convList.Update(a.deps.Roster.Conversations())
		})
	case "unread.loaded":
		go a.persistThread(a.deps.Tracker.Messages())
		a.app.QueueUpdateDraw(a.renderThread)
	case "unread.messages_changed":
		a.app.QueueUpdateDraw(a.renderThread)
	case "unread.count_changed":
		if p, ok := evt.Payload.(unread.CountChange); ok {
			a.deps.Roster.SetUnread(p.ConversationID, p.Remaining)
		}
		a.app.QueueUpdateDraw(a.renderThread)
	case "unread.load_failed":
		var cached []model.Message
		if p, ok := evt.Payload.(unread.LoadFailed); ok {
			cached = a.cachedThread(p.ConversationID)
		}
		a.app.QueueUpdateDraw(func() {
			if len(cached) > 0 {
				a.msgPane.Update(cached, "")
				a.statusBar.SetFlash("backend unreachable, showing cached messages")
			} else {
				a.statusBar.SetFlash("failed to load messages")
			}
		})
	case "unread.marked_read":
		if p, ok := evt.Payload.(unread.MarkedRead); ok {
			a.deps.Roster.MarkRead(p.ConversationID)
		}
	case "stories.updated":
		a.app.QueueUpdateDraw(a.renderStories)
	case "session.qr":
		if code, ok := evt.Payload.(string); ok {
			a.app.QueueUpdateDraw(func() {
				a.authView.ShowQR(code)
				a.switchPage("auth")
			})
		}
	case "session.ready":
		go a.refreshOnce()
		a.app.QueueUpdateDraw(func() {
			if page, _ := a.pages.GetFrontPage(); page == "auth" {
				a.switchPage("chats")
				a.app.SetFocus(a.convList)
			}
		})
	case "session.connected":
		a.app.QueueUpdateDraw(func() {
			a.statusBar.SetStatus("connected")
			if page, _ := a.pages.GetFrontPage(); page == "auth" {
				a.authView.ShowMessage("Connected. Waiting for QR...")
			}
		})
	case "session.disconnected":
		a.app.QueueUpdateDraw(func() {
			a.statusBar.SetStatus("disconnected")
			if page, _ := a.pages.GetFrontPage(); page == "auth" {
				a.authView.ShowMessage("Connection lost. Reconnecting...")
			}
		})
	}
}
