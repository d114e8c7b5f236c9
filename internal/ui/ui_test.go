package ui

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/eqviz/internal/dashboard"
	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/services"
	"github.com/desertthunder/eqviz/internal/shared"
	tu "github.com/desertthunder/eqviz/internal/testing"
)

const sampleCSV = "Equipment Name,Type,Flowrate,Pressure,Temperature\nP-1,Pump,120,6.2,82\n"

func newTestModel(t *testing.T, seed map[string]string) (*Model, *dashboard.Dashboard, *tu.FakeAPI, *tu.MemoryStore) {
	t.Helper()
	api := tu.NewFakeAPI(t)
	store := tu.NewMemoryStore(seed)
	dash := dashboard.New(store, services.NewAPIService(api.URL, api.Client()), shared.NewLogger(io.Discard))
	return NewModel(context.Background(), dash), dash, api, store
}

func signedIn() map[string]string {
	return map[string]string{models.KeyToken: tu.FakeToken}
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// press sends msg and returns the command it produced.
func press(m *Model, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

// settle runs cmd and feeds every application message it yields back into the model.
func settle(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			settle(m, c)
		}
	case Msg:
		m.Update(msg)
	}
}

func submitForm(m *Model, username, password string) tea.Cmd {
	press(m, keyRunes(username))
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	press(m, keyRunes(password))
	return press(m, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestModel(t *testing.T) {
	t.Run("Initial View", func(t *testing.T) {
		t.Run("Login When Signed Out", func(t *testing.T) {
			m, _, _, _ := newTestModel(t, nil)
			if m.CurrentView() != LoginView {
				t.Errorf("expected login view, got %d", m.CurrentView())
			}
			if !strings.Contains(m.View(), "Log In") {
				t.Error("expected login heading")
			}
		})

		t.Run("Dashboard With Restored Session", func(t *testing.T) {
			m, _, _, _ := newTestModel(t, signedIn())
			if m.CurrentView() != DashboardView {
				t.Errorf("expected dashboard view, got %d", m.CurrentView())
			}
			if !strings.Contains(m.View(), "No uploads yet") {
				t.Error("expected empty dashboard hint")
			}
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("Seeds Dashboard", func(t *testing.T) {
			m, dash, api, _ := newTestModel(t, nil)
			api.Respond("/login/", http.StatusOK, tu.LoginBody(3))

			cmd := submitForm(m, "alice", "secret")
			if !m.busy {
				t.Fatal("expected model to be busy")
			}
			settle(m, cmd)

			if m.CurrentView() != DashboardView {
				t.Fatalf("expected dashboard view, got %d", m.CurrentView())
			}
			if !dash.Authenticated() || dash.Len() != 3 {
				t.Errorf("expected authenticated dashboard with 3 uploads, got %v/%d", dash.Authenticated(), dash.Len())
			}
			if len(m.uploads.Items()) != 3 {
				t.Errorf("expected 3 list items, got %d", len(m.uploads.Items()))
			}
			if !strings.Contains(m.View(), "Signed in") {
				t.Error("expected sign in notice")
			}
		})

		t.Run("Shows Server Error", func(t *testing.T) {
			m, _, api, _ := newTestModel(t, nil)
			api.Respond("/login/", http.StatusBadRequest, `{"error": "Invalid credentials"}`)

			settle(m, submitForm(m, "alice", "wrong"))

			if m.CurrentView() != LoginView {
				t.Errorf("expected login view, got %d", m.CurrentView())
			}
			if !strings.Contains(m.View(), "Invalid credentials") {
				t.Errorf("expected server message, got %q", m.View())
			}
			if m.password.Value() != "" {
				t.Error("expected password to be cleared")
			}
		})

		t.Run("Missing Password", func(t *testing.T) {
			m, _, api, _ := newTestModel(t, nil)

			press(m, keyRunes("alice"))
			press(m, tea.KeyMsg{Type: tea.KeyDown})
			settle(m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))

			if !strings.Contains(m.View(), "Please enter username and password") {
				t.Errorf("expected validation message, got %q", m.View())
			}
			if api.Count("/login/") != 0 {
				t.Error("expected no request")
			}
		})

		t.Run("Keys Ignored While Busy", func(t *testing.T) {
			m, _, _, _ := newTestModel(t, nil)
			cmd := submitForm(m, "alice", "secret")

			press(m, tea.KeyMsg{Type: tea.KeyTab})
			if m.CurrentView() != LoginView {
				t.Error("expected view to stay while busy")
			}
			if !strings.Contains(m.View(), "working") {
				t.Error("expected spinner")
			}
			settle(m, cmd)
		})
	})

	t.Run("Register", func(t *testing.T) {
		m, dash, api, _ := newTestModel(t, nil)

		press(m, tea.KeyMsg{Type: tea.KeyTab})
		if m.CurrentView() != RegisterView {
			t.Fatalf("expected register view, got %d", m.CurrentView())
		}
		if !strings.Contains(m.View(), "Create Account") {
			t.Error("expected register heading")
		}

		settle(m, submitForm(m, "bob", "pw"))

		if api.Count("/register/") != 1 || api.Count("/login/") != 0 {
			t.Errorf("expected one register request, got %d/%d", api.Count("/register/"), api.Count("/login/"))
		}
		if m.CurrentView() != DashboardView || !dash.Authenticated() {
			t.Error("expected authenticated dashboard")
		}

		t.Run("Tab Returns To Login", func(t *testing.T) {
			m, _, _, _ := newTestModel(t, nil)
			press(m, tea.KeyMsg{Type: tea.KeyTab})
			press(m, tea.KeyMsg{Type: tea.KeyTab})
			if m.CurrentView() != LoginView {
				t.Errorf("expected login view, got %d", m.CurrentView())
			}
		})
	})

	t.Run("Upload", func(t *testing.T) {
		t.Run("Records And Selects", func(t *testing.T) {
			m, dash, _, _ := newTestModel(t, signedIn())
			path := tu.WriteCSV(t, "plant.csv", sampleCSV)

			press(m, keyRunes("u"))
			if m.CurrentView() != UploadView {
				t.Fatalf("expected upload view, got %d", m.CurrentView())
			}
			press(m, keyRunes(path))
			settle(m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))

			if m.CurrentView() != DashboardView {
				t.Fatalf("expected dashboard view, got %d", m.CurrentView())
			}
			if dash.Len() != 1 || dash.Selected() == nil {
				t.Fatal("expected new upload to be cached and selected")
			}

			view := m.View()
			for _, want := range []string{models.PlaceholderFileName, "Uploaded 120 records", "101.25", "Pump"} {
				if !strings.Contains(view, want) {
					t.Errorf("expected view to contain %q", want)
				}
			}
		})

		t.Run("Empty Path", func(t *testing.T) {
			m, _, api, _ := newTestModel(t, signedIn())

			press(m, keyRunes("u"))
			settle(m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))

			if m.CurrentView() != UploadView {
				t.Errorf("expected upload view, got %d", m.CurrentView())
			}
			if !strings.Contains(m.View(), dashboard.NoFileSelected) {
				t.Errorf("expected no file message, got %q", m.View())
			}
			if api.Count("/upload_csv/") != 0 {
				t.Error("expected no request")
			}
		})

		t.Run("Expired Session Returns To Login", func(t *testing.T) {
			m, dash, api, _ := newTestModel(t, signedIn())
			api.Respond("/upload_csv/", http.StatusUnauthorized, `{"detail": "Invalid token."}`)
			path := tu.WriteCSV(t, "plant.csv", sampleCSV)

			press(m, keyRunes("u"))
			press(m, keyRunes(path))
			settle(m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))

			if dash.Authenticated() {
				t.Error("expected session to expire")
			}
			if m.CurrentView() != LoginView {
				t.Errorf("expected login view, got %d", m.CurrentView())
			}
			if !strings.Contains(m.View(), "Invalid token.") {
				t.Errorf("expected server message, got %q", m.View())
			}
		})

		t.Run("Esc Goes Back", func(t *testing.T) {
			m, _, _, _ := newTestModel(t, signedIn())
			press(m, keyRunes("u"))
			press(m, tea.KeyMsg{Type: tea.KeyEsc})
			if m.CurrentView() != DashboardView {
				t.Errorf("expected dashboard view, got %d", m.CurrentView())
			}
		})
	})

	t.Run("Select Upload", func(t *testing.T) {
		m, dash, api, _ := newTestModel(t, nil)
		api.Respond("/login/", http.StatusOK, tu.LoginBody(3))
		settle(m, submitForm(m, "alice", "secret"))

		press(m, tea.KeyMsg{Type: tea.KeyDown})
		press(m, tea.KeyMsg{Type: tea.KeyEnter})

		sel := dash.Selected()
		if sel == nil || sel.ID != "2" {
			t.Fatalf("expected upload 2 selected, got %+v", sel)
		}
		if !strings.Contains(m.View(), "file-2.csv") {
			t.Error("expected selected file in detail panel")
		}
	})

	t.Run("Logout", func(t *testing.T) {
		m, dash, _, store := newTestModel(t, signedIn())

		press(m, keyRunes("x"))

		if m.CurrentView() != LoginView {
			t.Errorf("expected login view, got %d", m.CurrentView())
		}
		if dash.Authenticated() || store.Has(models.KeyToken) {
			t.Error("expected session to be cleared")
		}
		if !strings.Contains(m.View(), "Signed out") {
			t.Error("expected sign out notice")
		}
	})

	t.Run("Quit", func(t *testing.T) {
		m, _, _, _ := newTestModel(t, signedIn())
		cmd := press(m, keyRunes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestBar(t *testing.T) {
	tc := []struct {
		share  float64
		filled int
	}{
		{0, 0},
		{50, 5},
		{100, 10},
		{150, 10},
		{1, 1},
	}

	for _, tt := range tc {
		got := strings.Count(Bar(tt.share, 10), "█")
		if got != tt.filled {
			t.Errorf("share %v: expected %d filled cells, got %d", tt.share, tt.filled, got)
		}
	}
}
