package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smileynet/agenda"
	"github.com/smileynet/agenda/internal/contact"
	"github.com/smileynet/agenda/internal/locale"
	"github.com/smileynet/agenda/internal/store"
	"github.com/smileynet/agenda/internal/tui"
)

// Menu indexes in display order.
const (
	optCreate = iota
	optList
	optEdit
	optDelete
	optExit
)

// step is one scripted answer: a select index or an input string.
type step struct {
	sel   int
	input string
	isSel bool
}

func sel(i int) step   { return step{sel: i, isSel: true} }
func in(s string) step { return step{input: s} }
func blank() step      { return step{} }

func fields(v ...string) []step {
	steps := make([]step, len(v))
	for i, s := range v {
		steps[i] = in(s)
	}
	return steps
}

// scriptPrompter answers prompts from a fixed script and applies defaults
// to empty inputs like the real prompters. Running past the script aborts.
type scriptPrompter struct {
	steps     []step
	questions []string
	defaults  []string
}

func (p *scriptPrompter) next(question string) (step, error) {
	p.questions = append(p.questions, question)
	if len(p.steps) == 0 {
		return step{}, tui.ErrAborted
	}
	st := p.steps[0]
	p.steps = p.steps[1:]
	return st, nil
}

func (p *scriptPrompter) Select(_ context.Context, question string, choices []string) (int, error) {
	st, err := p.next(question)
	if err != nil {
		return -1, err
	}
	if !st.isSel || st.sel >= len(choices) {
		return -1, fmt.Errorf("script: unexpected select %q", question)
	}
	return st.sel, nil
}

func (p *scriptPrompter) Input(_ context.Context, question, def string) (string, error) {
	st, err := p.next(question)
	if err != nil {
		return "", err
	}
	if st.isSel {
		return "", fmt.Errorf("script: unexpected input %q", question)
	}
	p.defaults = append(p.defaults, def)
	if st.input == "" {
		return def, nil
	}
	return st.input, nil
}

// memStore keeps the collection in memory and counts saves.
type memStore struct {
	users   []contact.User
	saves   int
	saveErr error
}

func (m *memStore) Load() []contact.User {
	return append([]contact.User{}, m.users...)
}

func (m *memStore) Save(users []contact.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.users = append([]contact.User{}, users...)
	return nil
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func spanish(t *testing.T) *locale.Catalog {
	t.Helper()
	c, err := locale.Load(agenda.Locales, "es")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func runScript(t *testing.T, st Store, steps ...[]step) (string, *scriptPrompter, error) {
	t.Helper()
	var all []step
	for _, s := range steps {
		all = append(all, s...)
	}
	p := &scriptPrompter{steps: all}
	var out bytes.Buffer
	sh := New(st, p, spanish(t), WithOutput(&out), WithClock(func() time.Time { return fixedNow }))
	err := sh.Run(context.Background())
	return out.String(), p, err
}

func seq(s ...step) []step { return s }

func TestRun_ExitChoice(t *testing.T) {
	out, _, err := runScript(t, &memStore{}, seq(sel(optExit)))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "¡Hasta luego!") {
		t.Errorf("output = %q, want goodbye", out)
	}
}

func TestRun_AbortEndsSession(t *testing.T) {
	// Given: the operator aborts the first prompt
	out, _, err := runScript(t, &memStore{})

	// Then: the session ends cleanly
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if !strings.Contains(out, "¡Hasta luego!") {
		t.Errorf("output = %q, want goodbye", out)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &scriptPrompter{steps: seq(sel(optCreate))}

	err := New(&memStore{}, p, spanish(t), WithOutput(&bytes.Buffer{})).Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(p.questions) != 0 {
		t.Errorf("prompted %d times after cancel, want 0", len(p.questions))
	}
}

func TestRun_Create(t *testing.T) {
	// Given: an empty store
	st := &memStore{}

	// When: a user with phone but no address is created
	out, _, err := runScript(t, st,
		seq(sel(optCreate)), fields("Ana", "ana@x.es", "123", ""),
		seq(sel(optExit)),
	)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Then: it is persisted as incomplete and confirmed
	if len(st.users) != 1 {
		t.Fatalf("users = %d, want 1", len(st.users))
	}
	u := st.users[0]
	if u.Name != "Ana" || u.Email != "ana@x.es" || u.Phone != "123" || u.Address != "" || u.Complete {
		t.Errorf("user = %+v", u)
	}
	if u.ID != fixedNow.UnixMilli() {
		t.Errorf("ID = %d, want %d", u.ID, fixedNow.UnixMilli())
	}
	if !strings.Contains(out, `Usuario "Ana" creado exitosamente.`) {
		t.Errorf("output = %q, want creation message", out)
	}
}

func TestRun_CreateTwiceKeepsIDsDistinct(t *testing.T) {
	st := &memStore{}

	_, _, err := runScript(t, st,
		seq(sel(optCreate)), fields("Ana", "", "", ""),
		seq(sel(optCreate)), fields("Luis", "", "", ""),
		seq(sel(optExit)),
	)
	if err != nil {
		t.Fatal(err)
	}

	if len(st.users) != 2 || st.users[0].ID == st.users[1].ID {
		t.Errorf("users = %+v, want two distinct ids", st.users)
	}
}

func TestRun_ListEmpty(t *testing.T) {
	out, p, err := runScript(t, &memStore{}, seq(sel(optList), sel(optExit)))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No hay usuarios registrados.") {
		t.Errorf("output = %q, want empty message", out)
	}
	// Only the two menu prompts; no filter question.
	if len(p.questions) != 2 {
		t.Errorf("questions = %v, want 2 menu prompts", p.questions)
	}
}

func TestRun_ListFilters(t *testing.T) {
	users := []contact.User{
		{ID: 1, Name: "Ana", Phone: "1", Address: "a", Complete: true},
		{ID: 2, Name: "Luis", Phone: "2"},
		{ID: 3, Name: "Eva", Phone: "3", Address: "c", Complete: true},
	}

	tests := []struct {
		name    string
		filter  int
		want    []string
		notWant []string
	}{
		{"all", 0, []string{"Usuarios encontrados:", "- Ana (Completo)", "- Luis (Incompleto)", "- Eva (Completo)"}, nil},
		{"complete", 1, []string{"- Ana (Completo)", "- Eva (Completo)"}, []string{"Luis"}},
		{"incomplete", 2, []string{"- Luis (Incompleto)"}, []string{"Ana", "Eva"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &memStore{users: users}
			out, _, err := runScript(t, st, seq(sel(optList), sel(tt.filter), sel(optExit)))
			if err != nil {
				t.Fatal(err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output = %q, want to contain %q", out, w)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(out, nw) {
					t.Errorf("output = %q, should not contain %q", out, nw)
				}
			}
			if st.saves != 0 {
				t.Errorf("saves = %d, listing must not write", st.saves)
			}
		})
	}
}

func TestRun_ListOrderPreserved(t *testing.T) {
	st := &memStore{users: []contact.User{
		{ID: 1, Name: "Zoe", Phone: "1", Address: "a", Complete: true},
		{ID: 2, Name: "Ana", Phone: "2", Address: "b", Complete: true},
	}}

	out, _, err := runScript(t, st, seq(sel(optList), sel(1), sel(optExit)))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Index(out, "Zoe") > strings.Index(out, "Ana") {
		t.Errorf("output = %q, want insertion order", out)
	}
}

func TestRun_ListNoMatches(t *testing.T) {
	st := &memStore{users: []contact.User{{ID: 1, Name: "Luis"}}}

	out, _, err := runScript(t, st, seq(sel(optList), sel(1), sel(optExit)))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No hay usuarios completos.") {
		t.Errorf("output = %q, want per-filter empty message", out)
	}
}

func TestRun_Edit(t *testing.T) {
	// Given: a complete user Ana
	st := &memStore{users: []contact.User{{ID: 1, Name: "Ana", Email: "ana@x.es", Phone: "1", Address: "2", Complete: true}}}

	// When: edited by lowercase name with a new email only
	out, p, err := runScript(t, st,
		seq(sel(optEdit), in("ana")), seq(blank(), in("nueva@x.es"), blank(), blank()),
		seq(sel(optExit)),
	)
	if err != nil {
		t.Fatal(err)
	}

	// Then: current values were offered as defaults and only email changed
	wantDefaults := []string{"", "Ana", "ana@x.es", "1", "2"}
	if strings.Join(p.defaults, "|") != strings.Join(wantDefaults, "|") {
		t.Errorf("defaults = %q, want %q", p.defaults, wantDefaults)
	}
	want := contact.User{ID: 1, Name: "Ana", Email: "nueva@x.es", Phone: "1", Address: "2", Complete: true}
	if st.users[0] != want {
		t.Errorf("user = %+v, want %+v", st.users[0], want)
	}
	if !strings.Contains(out, `Usuario "Ana" actualizado correctamente.`) {
		t.Errorf("output = %q, want update message", out)
	}
}

func TestRun_EditBlankFieldsKeepsComplete(t *testing.T) {
	// Given: Ana with phone "1" and address "2"
	st := &memStore{users: []contact.User{{ID: 1, Name: "Ana", Phone: "1", Address: "2", Complete: true}}}

	// When: every replacement field is left blank
	_, _, err := runScript(t, st,
		seq(sel(optEdit), in("Ana"), blank(), blank(), blank(), blank()),
		seq(sel(optExit)),
	)
	if err != nil {
		t.Fatal(err)
	}

	// Then: fields are unchanged and completeness follows the resolved values
	u := st.users[0]
	if u.Name != "Ana" || u.Phone != "1" || u.Address != "2" || !u.Complete {
		t.Errorf("user = %+v, want unchanged and complete", u)
	}
}

func TestRun_EditRenameConfirmsNewName(t *testing.T) {
	st := &memStore{users: []contact.User{{ID: 1, Name: "Ana"}}}

	out, _, err := runScript(t, st,
		seq(sel(optEdit), in("ANA"), in("Ana María"), blank(), blank(), blank()),
		seq(sel(optExit)),
	)
	if err != nil {
		t.Fatal(err)
	}
	if st.users[0].Name != "Ana María" {
		t.Errorf("name = %q, want %q", st.users[0].Name, "Ana María")
	}
	if !strings.Contains(out, `Usuario "Ana María" actualizado correctamente.`) {
		t.Errorf("output = %q, want new name in message", out)
	}
}

func TestRun_EditNotFound(t *testing.T) {
	st := &memStore{users: []contact.User{{ID: 1, Name: "Ana"}}}

	out, _, err := runScript(t, st, seq(sel(optEdit), in("Pedro"), sel(optExit)))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Usuario no encontrado.") {
		t.Errorf("output = %q, want not found", out)
	}
	if st.saves != 0 {
		t.Errorf("saves = %d, want 0", st.saves)
	}
}

func TestRun_EditEmpty(t *testing.T) {
	out, _, err := runScript(t, &memStore{}, seq(sel(optEdit), sel(optExit)))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No hay usuarios registrados.") {
		t.Errorf("output = %q, want empty message", out)
	}
}

func TestRun_DeleteAllMatches(t *testing.T) {
	// Given: two users named Ana in different case
	st := &memStore{users: []contact.User{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Luis"}, {ID: 3, Name: "ANA"}}}

	// When: "ana" is deleted
	out, _, err := runScript(t, st, seq(sel(optDelete), in("ana"), sel(optExit)))
	if err != nil {
		t.Fatal(err)
	}

	// Then: both are removed in one save
	if len(st.users) != 1 || st.users[0].Name != "Luis" {
		t.Errorf("users = %+v, want only Luis", st.users)
	}
	if st.saves != 1 {
		t.Errorf("saves = %d, want 1", st.saves)
	}
	if !strings.Contains(out, `Usuario "ana" eliminado correctamente.`) {
		t.Errorf("output = %q, want delete message with typed name", out)
	}
}

func TestRun_DeleteNotFound(t *testing.T) {
	st := &memStore{users: []contact.User{{ID: 1, Name: "Ana"}}}

	out, _, err := runScript(t, st, seq(sel(optDelete), in("Pedro"), sel(optExit)))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Usuario no encontrado.") {
		t.Errorf("output = %q, want not found", out)
	}
	if st.saves != 0 || len(st.users) != 1 {
		t.Errorf("store changed: saves=%d users=%+v", st.saves, st.users)
	}
}

func TestRun_DeleteEmpty(t *testing.T) {
	out, _, err := runScript(t, &memStore{}, seq(sel(optDelete), sel(optExit)))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No hay usuarios registrados.") {
		t.Errorf("output = %q, want empty message", out)
	}
}

func TestRun_SaveFailureIsFatal(t *testing.T) {
	diskFull := errors.New("disk full")
	st := &memStore{saveErr: diskFull}

	out, p, err := runScript(t, st,
		seq(sel(optCreate)), fields("Ana", "", "", ""),
		seq(sel(optExit)),
	)

	if !errors.Is(err, diskFull) || !errors.Is(err, ErrPersist) {
		t.Fatalf("Run() error = %v, want ErrPersist wrapping disk full", err)
	}
	if strings.Contains(out, "creado") || strings.Contains(out, "Hasta luego") {
		t.Errorf("output = %q, want no confirmation after failed save", out)
	}
	if len(p.steps) != 1 {
		t.Errorf("remaining steps = %d, loop should stop at the failure", len(p.steps))
	}
}

func TestRun_AbortMidCreateDoesNotSave(t *testing.T) {
	st := &memStore{}

	_, _, err := runScript(t, st, seq(sel(optCreate), in("Ana")))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if st.saves != 0 {
		t.Errorf("saves = %d, want 0", st.saves)
	}
}

func TestRun_WithFileStore(t *testing.T) {
	// Given: a file-backed store
	fs := store.NewFileStore(filepath.Join(t.TempDir(), "users.json"), nil)

	// When: a session creates two users, edits one and deletes the other
	_, _, err := runScript(t, fs,
		seq(sel(optCreate)), fields("Ana", "ana@x.es", "1", ""),
		seq(sel(optCreate)), fields("Luis", "", "2", "b"),
		seq(sel(optEdit), in("ana"), blank(), blank(), blank(), in("Calle 1")),
		seq(sel(optDelete), in("luis")),
		seq(sel(optExit)),
	)
	if err != nil {
		t.Fatal(err)
	}

	// Then: the file holds only the completed Ana
	users, err := fs.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 {
		t.Fatalf("users = %+v, want 1", users)
	}
	if users[0].Name != "Ana" || users[0].Address != "Calle 1" || !users[0].Complete {
		t.Errorf("user = %+v", users[0])
	}
}

func TestRun_EnglishCatalog(t *testing.T) {
	en, err := locale.Load(agenda.Locales, "en")
	if err != nil {
		t.Fatal(err)
	}
	p := &scriptPrompter{steps: seq(sel(optList), sel(optExit))}
	var out bytes.Buffer

	if err := New(&memStore{}, p, en, WithOutput(&out)).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No users registered.") || !strings.Contains(out.String(), "Goodbye!") {
		t.Errorf("output = %q, want English messages", out.String())
	}
	if p.questions[0] != "Choose an option:" {
		t.Errorf("menu question = %q", p.questions[0])
	}
}
