// Package tui is the interactive blog studio.
package tui

import (
	"context"
	"fmt"
	"strings"

	"blog-api/client"
	"blog-api/models"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	msgFetchFailed  = "Failed to fetch posts."
	msgSaveFailed   = "Failed to save the post."
	msgDeleteFailed = "Failed to delete the post."
	msgUnknown      = "Something went wrong."

	msgTitleRequired   = "Title is required."
	msgContentRequired = "Content is required."
)

// API is the part of client.Client the studio uses.
type API interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, in models.CreatePostInput) (models.Post, error)
	UpdatePost(ctx context.Context, id uuid.UUID, in models.UpdatePostInput) (models.Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error
}

// DialogMode is the state of the post dialog.
type DialogMode int

const (
	DialogClosed DialogMode = iota
	DialogCreating
	DialogEditing
)

// Draft is the post being written in the dialog.
type Draft struct {
	Title     string
	Content   string
	Author    string
	Published bool
}

func emptyDraft() Draft {
	return Draft{Published: true}
}

type field int

const (
	fieldTitle field = iota
	fieldContent
	fieldAuthor
	fieldPublished
	fieldCount
)

// Messages
type postsLoadedMsg struct {
	posts []models.Post
}

type postsFailedMsg struct {
	err error
}

type postSavedMsg struct {
	post models.Post
}

type saveFailedMsg struct {
	err error
}

type postDeletedMsg struct {
	id uuid.UUID
}

type deleteFailedMsg struct {
	err error
}

// Model is the Bubbletea model for the studio.
type Model struct {
	ctx context.Context
	api API

	posts   []models.Post
	loading bool
	err     string
	cursor  int

	dialog    DialogMode
	editingID uuid.UUID
	draft     Draft
	saving    bool
	formError string

	focus   field
	title   textinput.Model
	content textarea.Model
	author  textinput.Model

	width  int
	height int
}

// New creates a studio model. The list starts out loading.
func New(ctx context.Context, api API) Model {
	title := textinput.New()
	title.Placeholder = "A headline worth reading"
	title.CharLimit = models.TitleMaxLength
	title.Cursor.SetMode(cursor.CursorStatic)

	author := textinput.New()
	author.Placeholder = "Who wrote it"
	author.Cursor.SetMode(cursor.CursorStatic)

	content := textarea.New()
	content.Placeholder = "Write your post"
	content.ShowLineNumbers = false
	content.SetHeight(6)

	return Model{
		ctx:     ctx,
		api:     api,
		posts:   []models.Post{},
		loading: true,
		draft:   emptyDraft(),
		title:   title,
		content: content,
		author:  author,
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadPosts()
}

// Commands
func (m Model) loadPosts() tea.Cmd {
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		posts, err := api.ListPosts(ctx)
		if err != nil {
			return postsFailedMsg{err: err}
		}
		return postsLoadedMsg{posts: posts}
	}
}

func (m Model) savePost() tea.Cmd {
	api, ctx, draft := m.api, m.ctx, m.draft
	editing, id := m.dialog == DialogEditing, m.editingID
	return func() tea.Msg {
		var (
			post models.Post
			err  error
		)
		if editing {
			post, err = api.UpdatePost(ctx, id, models.UpdatePostInput{
				Title:     &draft.Title,
				Content:   &draft.Content,
				Author:    &draft.Author,
				Published: &draft.Published,
			})
		} else {
			post, err = api.CreatePost(ctx, models.CreatePostInput{
				Title:     draft.Title,
				Content:   draft.Content,
				Author:    draft.Author,
				Published: &draft.Published,
			})
		}
		if err != nil {
			return saveFailedMsg{err: err}
		}
		return postSavedMsg{post: post}
	}
}

func (m Model) deletePost(id uuid.UUID) tea.Cmd {
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		if err := api.DeletePost(ctx, id); err != nil {
			return deleteFailedMsg{err: err}
		}
		return postDeletedMsg{id: id}
	}
}

// errorText picks the message shown for a failed request. API errors get
// the fixed fallback, transport errors their own text.
func errorText(err error, fallback string) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		return fallback
	case err != nil && err.Error() != "":
		return err.Error()
	default:
		return msgUnknown
	}
}

// reload starts a fresh list fetch.
func (m Model) reload() (Model, tea.Cmd) {
	m.loading = true
	m.err = ""
	return m, m.loadPosts()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeInputs()
		return m, nil

	case postsLoadedMsg:
		m.loading = false
		m.posts = msg.posts
		if m.posts == nil {
			m.posts = []models.Post{}
		}
		m.clampCursor()
		return m, nil

	case postsFailedMsg:
		m.loading = false
		m.err = errorText(msg.err, msgFetchFailed)
		return m, nil

	case postSavedMsg:
		m.saving = false
		m.closeDialog()
		return m.reload()

	case saveFailedMsg:
		m.saving = false
		m.formError = errorText(msg.err, msgSaveFailed)
		return m, nil

	case postDeletedMsg:
		return m.reload()

	case deleteFailedMsg:
		m.err = errorText(msg.err, msgDeleteFailed)
		return m, nil

	case tea.KeyMsg:
		if m.dialog == DialogClosed {
			return m.updateList(msg)
		}
		return m.updateDialog(msg)
	}

	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.posts)-1 {
			m.cursor++
		}

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case "r":
		return m.reload()

	case "n":
		m.openDialog(DialogCreating, nil)

	case "e", "enter":
		if post, ok := m.selected(); ok {
			m.openDialog(DialogEditing, &post)
		}

	case "d":
		if post, ok := m.selected(); ok {
			m.err = ""
			return m, m.deletePost(post.ID)
		}
	}
	return m, nil
}

func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if !m.saving {
			m.closeDialog()
		}
		return m, nil

	case "tab":
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil

	case "shift+tab":
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil

	case "ctrl+s":
		return m.submit()
	}

	if m.saving {
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldTitle:
		m.title, cmd = m.title.Update(msg)
	case fieldContent:
		m.content, cmd = m.content.Update(msg)
	case fieldAuthor:
		m.author, cmd = m.author.Update(msg)
	case fieldPublished:
		if msg.String() == " " {
			m.draft.Published = !m.draft.Published
		}
	}
	m.syncDraft()
	return m, cmd
}

// submit checks the draft and sends it. Only one save runs at a time.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	m.syncDraft()
	m.formError = ""

	if strings.TrimSpace(m.draft.Title) == "" {
		m.formError = msgTitleRequired
		return m, nil
	}
	if strings.TrimSpace(m.draft.Content) == "" {
		m.formError = msgContentRequired
		return m, nil
	}

	m.saving = true
	return m, m.savePost()
}

func (m *Model) openDialog(mode DialogMode, post *models.Post) {
	m.dialog = mode
	m.formError = ""
	m.editingID = uuid.Nil
	m.draft = emptyDraft()
	if post != nil {
		m.editingID = post.ID
		m.draft = Draft{
			Title:     post.Title,
			Content:   post.Content,
			Author:    post.Author,
			Published: post.Published,
		}
	}

	m.title.SetValue(m.draft.Title)
	m.content.SetValue(m.draft.Content)
	m.author.SetValue(m.draft.Author)
	m.setFocus(fieldTitle)
}

func (m *Model) closeDialog() {
	m.dialog = DialogClosed
	m.editingID = uuid.Nil
	m.draft = emptyDraft()
	m.formError = ""
	m.title.Blur()
	m.content.Blur()
	m.author.Blur()
}

func (m *Model) setFocus(f field) {
	m.focus = f
	m.title.Blur()
	m.content.Blur()
	m.author.Blur()
	switch f {
	case fieldTitle:
		_ = m.title.Focus()
	case fieldContent:
		_ = m.content.Focus()
	case fieldAuthor:
		_ = m.author.Focus()
	}
}

func (m *Model) syncDraft() {
	m.draft.Title = m.title.Value()
	m.draft.Content = m.content.Value()
	m.draft.Author = m.author.Value()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.posts) {
		m.cursor = len(m.posts) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) resizeInputs() {
	w := m.width - 12
	if w < 20 {
		w = 20
	}
	m.title.Width = w
	m.author.Width = w
	m.content.SetWidth(w)
}

func (m Model) selected() (models.Post, bool) {
	if len(m.posts) == 0 || m.cursor >= len(m.posts) {
		return models.Post{}, false
	}
	return m.posts[m.cursor], true
}

func (m Model) View() string {
	if m.dialog != DialogClosed {
		return m.dialogView()
	}

	var b strings.Builder
	b.WriteString(eyebrowStyle.Render("BLOG STUDIO"))
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Craft, publish, and refine your stories."))
	b.WriteString("\n")

	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}

	switch {
	case m.loading:
		b.WriteString(mutedStyle.Render("Loading posts..."))
	case len(m.posts) == 0:
		b.WriteString(emptyStyle.Render("No posts yet. Press n to write the first one."))
	default:
		for i, post := range m.posts {
			line := fmt.Sprintf("%s  %s\n   by %s · updated %s",
				post.Title, statusBadge(post.Published),
				post.Author, post.UpdatedAt.Local().Format("Jan 2, 2006 15:04"))
			if i == m.cursor {
				b.WriteString(selectedItemStyle.Render("▸ " + line))
			} else {
				b.WriteString(unselectedItemStyle.Render(line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(helpStyle.Render(
		formatKey("↑/↓", "navigate") + " • " +
			formatKey("n", "new") + " • " +
			formatKey("e", "edit") + " • " +
			formatKey("d", "delete") + " • " +
			formatKey("r", "refresh") + " • " +
			formatKey("q", "quit"),
	))
	return b.String()
}

func (m Model) dialogView() string {
	heading := "Create Post"
	if m.dialog == DialogEditing {
		heading = "Edit Post"
	}

	label := func(f field, text string) string {
		if m.focus == f {
			return focusedLabelStyle.Render(text)
		}
		return labelStyle.Render(text)
	}

	toggle := "[ ]"
	if m.draft.Published {
		toggle = "[x]"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(heading))
	b.WriteString("\n")
	b.WriteString(label(fieldTitle, "Title") + "\n" + m.title.View() + "\n\n")
	b.WriteString(label(fieldContent, "Content") + "\n" + m.content.View() + "\n\n")
	b.WriteString(label(fieldAuthor, "Author") + "\n" + m.author.View() + "\n\n")
	b.WriteString(label(fieldPublished, toggle+" Published") + "  " + statusBadge(m.draft.Published) + "\n")

	if m.formError != "" {
		b.WriteString("\n" + formErrorStyle.Render(m.formError) + "\n")
	}
	if m.saving {
		b.WriteString("\n" + mutedStyle.Render("Saving...") + "\n")
	}

	b.WriteString(helpStyle.Render(
		formatKey("tab", "next field") + " • " +
			formatKey("space", "toggle published") + " • " +
			formatKey("ctrl+s", "save") + " • " +
			formatKey("esc", "cancel"),
	))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialogStyle.Render(b.String()))
}

// Run starts the interactive studio.
func Run(ctx context.Context, api API) error {
	p := tea.NewProgram(New(ctx, api), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
