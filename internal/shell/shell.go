// Package shell drives the interactive menu: it prompts the operator, applies
// contact operations to a freshly loaded collection and persists the result.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/smileynet/agenda/internal/contact"
	"github.com/smileynet/agenda/internal/locale"
	"github.com/smileynet/agenda/internal/tui"
)

// ErrPersist wraps a failed save.
var ErrPersist = errors.New("shell: saving users")

// Store loads and persists the full user collection.
type Store interface {
	Load() []contact.User
	Save(users []contact.User) error
}

// state is a position in the menu state machine.
type state int

const (
	stateMenu state = iota
	stateCreating
	stateListing
	stateEditing
	stateDeleting
	stateExited
)

// menuStates maps menu choice order to the state it enters.
var menuStates = []state{stateCreating, stateListing, stateEditing, stateDeleting, stateExited}

// Shell is the interactive menu loop. It keeps no collection between
// actions; every action loads, mutates and saves on its own.
type Shell struct {
	store    Store
	prompter tui.Prompter
	msgs     *locale.Catalog
	out      io.Writer
	logger   *slog.Logger
	now      func() time.Time
	styled   bool
}

// Option configures a Shell.
type Option func(*Shell)

// WithOutput sets where results are printed (default: os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(s *Shell) { s.out = w }
}

// WithLogger sets the logger for completed actions.
func WithLogger(l *slog.Logger) Option {
	return func(s *Shell) { s.logger = l }
}

// WithClock sets the time source used for new user ids.
func WithClock(now func() time.Time) Option {
	return func(s *Shell) { s.now = now }
}

// WithStyledOutput colors the status labels in listings.
func WithStyledOutput(styled bool) Option {
	return func(s *Shell) { s.styled = styled }
}

// New creates a Shell.
func New(store Store, prompter tui.Prompter, msgs *locale.Catalog, opts ...Option) *Shell {
	s := &Shell{
		store:    store,
		prompter: prompter,
		msgs:     msgs,
		out:      os.Stdout,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run loops over the menu until the operator exits, aborts a prompt or ctx
// is cancelled. A failed save is returned wrapped in ErrPersist; prompt
// read failures are returned as is.
func (s *Shell) Run(ctx context.Context) error {
	st := stateMenu
	for st != stateExited {
		if ctx.Err() != nil {
			break
		}

		var err error
		switch st {
		case stateMenu:
			st, err = s.menu(ctx)
			if err == nil {
				continue
			}
		case stateCreating:
			err = s.create(ctx)
		case stateListing:
			err = s.list(ctx)
		case stateEditing:
			err = s.edit(ctx)
		case stateDeleting:
			err = s.delete(ctx)
		}

		if err != nil {
			if isQuit(err) {
				break
			}
			return err
		}
		st = stateMenu
	}

	s.println(s.msgs.Text(locale.Goodbye, nil))
	return nil
}

// isQuit reports whether err ends the session without failing it.
func isQuit(err error) bool {
	return errors.Is(err, tui.ErrAborted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (s *Shell) menu(ctx context.Context) (state, error) {
	choices := []string{
		s.msgs.Text(locale.MenuCreate, nil),
		s.msgs.Text(locale.MenuList, nil),
		s.msgs.Text(locale.MenuEdit, nil),
		s.msgs.Text(locale.MenuDelete, nil),
		s.msgs.Text(locale.MenuExit, nil),
	}
	idx, err := s.prompter.Select(ctx, s.msgs.Text(locale.MenuPrompt, nil), choices)
	if err != nil {
		return stateExited, err
	}
	return menuStates[idx], nil
}

func (s *Shell) create(ctx context.Context) error {
	f, err := s.askFields(ctx, [4]string{locale.FieldName, locale.FieldEmail, locale.FieldPhone, locale.FieldAddress}, contact.User{})
	if err != nil {
		return err
	}

	users, u := contact.Create(s.store.Load(), f, s.now())
	if err := s.save(users); err != nil {
		return err
	}
	s.logger.Debug("user created", slog.Int64("id", u.ID), slog.Bool("complete", u.Complete))
	s.println(s.msgs.Text(locale.ResultCreated, nameData(u.Name)))
	return nil
}

func (s *Shell) list(ctx context.Context) error {
	users := s.store.Load()
	if len(users) == 0 {
		s.println(s.msgs.Text(locale.ResultEmpty, nil))
		return nil
	}

	labels := []string{
		s.msgs.Text(locale.ListAll, nil),
		s.msgs.Text(locale.ListComplete, nil),
		s.msgs.Text(locale.ListIncomplete, nil),
	}
	idx, err := s.prompter.Select(ctx, s.msgs.Text(locale.ListPrompt, nil), labels)
	if err != nil {
		return err
	}
	mode := contact.FilterModes[idx]

	found := contact.Filter(users, mode)
	s.logger.Debug("users listed", slog.String("filter", mode.String()), slog.Int("count", len(found)))
	if len(found) == 0 {
		s.println(s.msgs.Text(locale.ListNone, map[string]string{"Filter": strings.ToLower(labels[idx])}))
		return nil
	}

	s.println(s.msgs.Text(locale.ListHeader, nil))
	for _, u := range found {
		s.println(s.msgs.Text(locale.ListItem, map[string]string{"Name": u.Name, "Status": s.status(u.Complete)}))
	}
	return nil
}

func (s *Shell) edit(ctx context.Context) error {
	users := s.store.Load()
	if len(users) == 0 {
		s.println(s.msgs.Text(locale.ResultEmpty, nil))
		return nil
	}

	name, err := s.prompter.Input(ctx, s.msgs.Text(locale.EditTarget, nil), "")
	if err != nil {
		return err
	}
	idx, ok := contact.FindByName(users, name)
	if !ok {
		s.println(s.msgs.Text(locale.ResultNotFound, nil))
		return nil
	}

	f, err := s.askFields(ctx, [4]string{locale.EditName, locale.EditEmail, locale.EditPhone, locale.EditAddress}, users[idx])
	if err != nil {
		return err
	}

	contact.Update(&users[idx], f)
	if err := s.save(users); err != nil {
		return err
	}
	s.logger.Debug("user updated", slog.Int64("id", users[idx].ID), slog.Bool("complete", users[idx].Complete))
	s.println(s.msgs.Text(locale.ResultUpdated, nameData(users[idx].Name)))
	return nil
}

func (s *Shell) delete(ctx context.Context) error {
	users := s.store.Load()
	if len(users) == 0 {
		s.println(s.msgs.Text(locale.ResultEmpty, nil))
		return nil
	}

	name, err := s.prompter.Input(ctx, s.msgs.Text(locale.DeleteTarget, nil), "")
	if err != nil {
		return err
	}

	remaining, removed := contact.DeleteByName(users, name)
	if removed == 0 {
		s.println(s.msgs.Text(locale.ResultNotFound, nil))
		return nil
	}
	if err := s.save(remaining); err != nil {
		return err
	}
	s.logger.Debug("users deleted", slog.Int("count", removed))
	s.println(s.msgs.Text(locale.ResultDeleted, nameData(name)))
	return nil
}

// askFields prompts for name, email, phone and address in order, offering
// the values of current as defaults.
func (s *Shell) askFields(ctx context.Context, keys [4]string, current contact.User) (contact.Fields, error) {
	defaults := [4]string{current.Name, current.Email, current.Phone, current.Address}
	var answers [4]string
	for i, k := range keys {
		v, err := s.prompter.Input(ctx, s.msgs.Text(k, nil), defaults[i])
		if err != nil {
			return contact.Fields{}, err
		}
		answers[i] = v
	}
	return contact.Fields{Name: answers[0], Email: answers[1], Phone: answers[2], Address: answers[3]}, nil
}

func (s *Shell) save(users []contact.User) error {
	if err := s.store.Save(users); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *Shell) status(complete bool) string {
	key := locale.StatusIncomplete
	if complete {
		key = locale.StatusComplete
	}
	label := s.msgs.Text(key, nil)
	if s.styled {
		return tui.StatusBadge(complete, label)
	}
	return label
}

func (s *Shell) println(line string) {
	_, _ = fmt.Fprintln(s.out, line)
}

func nameData(name string) map[string]string {
	return map[string]string{"Name": name}
}
