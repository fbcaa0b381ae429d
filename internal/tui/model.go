// Package tui 互動式食譜搜尋介面
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recipe-finder/internal/core/finder"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/view"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const helpText = "type to search · ↑/↓ select · enter details · tab next tag · ctrl+x clear tag · ctrl+s sort · esc quit"

// searchMsg 去抖動後送出的搜尋
type searchMsg struct{ query string }

// searchDoneMsg 搜尋結束，畫面需重繪
type searchDoneMsg struct{ err error }

// Model 搜尋畫面狀態
type Model struct {
	ctrl      *finder.Controller
	debouncer *finder.Debouncer
	send      func(tea.Msg)
	timeout   time.Duration

	input    textinput.Model
	lastText string
	cursor   int
	tagIndex int
	detail   *recipe.Recipe
	hint     string
	width    int

	// searching 從送出搜尋到結果回來之間為 true
	searching bool
}

// New 創建搜尋畫面
func New(ctrl *finder.Controller, debounce, timeout time.Duration) *Model {
	ti := textinput.New()
	ti.Placeholder = "Search recipes (min 3 characters)..."
	ti.Prompt = "› "
	ti.Focus()

	return &Model{
		ctrl:      ctrl,
		debouncer: finder.NewDebouncer(debounce),
		timeout:   timeout,
		input:     ti,
		tagIndex:  -1,
	}
}

// SetSender 設定訊息送出函式，通常為 (*tea.Program).Send
func (m *Model) SetSender(send func(tea.Msg)) {
	m.send = send
}

// Close 停止尚未觸發的搜尋
func (m *Model) Close() {
	m.debouncer.Stop()
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case searchMsg:
		m.searching = true
		return m, m.search(msg.query)

	case searchDoneMsg:
		m.searching = false
		m.cursor = 0
		m.tagIndex = -1
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// 游標閃爍等訊息交給輸入框
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detail != nil {
		switch msg.String() {
		case "esc", "enter", "q":
			m.detail = nil
		case "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	state := m.ctrl.Snapshot()
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down":
		if m.cursor < len(state.Displayed)-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		if m.cursor < len(state.Displayed) {
			r := state.Displayed[m.cursor]
			m.detail = &r
		}
		return m, nil
	case "ctrl+s":
		m.ctrl.ToggleSort()
		m.cursor = 0
		return m, nil
	case "tab":
		m.nextTag(state.AvailableTags)
		return m, nil
	case "ctrl+x":
		m.tagIndex = -1
		m.ctrl.FilterByTag("")
		m.cursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if text := m.input.Value(); text != m.lastText {
		m.lastText = text
		m.schedule(text)
	}
	return m, cmd
}

// nextTag 循環選擇下一個標籤，最後一個之後清除篩選
func (m *Model) nextTag(tags []string) {
	if len(tags) == 0 {
		return
	}
	m.tagIndex++
	m.cursor = 0
	if m.tagIndex >= len(tags) {
		m.tagIndex = -1
		m.ctrl.FilterByTag("")
		return
	}
	m.ctrl.FilterByTag(tags[m.tagIndex])
}

// schedule 輸入停止一段時間後才送出搜尋
func (m *Model) schedule(text string) {
	if len([]rune(strings.TrimSpace(text))) < finder.MinQueryLength {
		m.hint = finder.ErrQueryTooShort.Error()
		return
	}
	m.hint = ""
	if m.send == nil {
		return
	}
	send := m.send
	m.debouncer.Call(func() { send(searchMsg{query: text}) })
}

func (m *Model) search(query string) tea.Cmd {
	ctrl := m.ctrl
	timeout := m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return searchDoneMsg{err: ctrl.Search(ctx, query)}
	}
}

func (m *Model) View() string {
	if m.detail != nil {
		r := *m.detail
		return view.Boundary(func() string { return view.Detail(r) }) + "\n" + view.MutedStyle.Render("esc back")
	}

	state := m.ctrl.Snapshot()
	if m.searching {
		// 搜尋命令尚未開始執行時控制器仍為 idle
		state.Status = finder.Status{Kind: finder.StatusLoading}
	}
	parts := []string{m.input.View()}
	if m.hint != "" {
		parts = append(parts, view.MutedStyle.Render(m.hint))
	}
	parts = append(parts, view.Boundary(func() string { return view.Screen(state) }))
	if n := len(state.Displayed); n > 0 && m.cursor < n {
		parts = append(parts, fmt.Sprintf("selected %d/%d: %s", m.cursor+1, n, state.Displayed[m.cursor].Name))
	}
	parts = append(parts, view.MutedStyle.Render(helpText))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
