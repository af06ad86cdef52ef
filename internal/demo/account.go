package demo

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/dalemusser/fhurl/auth"
	"github.com/dalemusser/fhurl/form"
	"github.com/dalemusser/fhurl/i18n"
	"github.com/dalemusser/fhurl/internal/accounts"
	"github.com/dalemusser/fhurl/session"
)

var msgInvalidLogin = i18n.LazyDefault("accounts.invalid_login", "Invalid username or password.")

// AccountLoginForm logs a user in against the account store.
type AccountLoginForm struct {
	*form.Base
	deps    *Deps
	account *accounts.Account
}

func (d *Deps) newAccountLoginForm() form.Form {
	return &AccountLoginForm{
		Base: form.New(
			form.TextField("username", "max=100").WithLabel(i18n.LazyDefault("accounts.username", "username")),
			form.PasswordField("password", "").WithLabel(i18n.LazyDefault("accounts.password", "password")),
		),
		deps: d,
	}
}

func (f *AccountLoginForm) Clean(ctx context.Context, b *form.Base) {
	if len(b.Errors()) > 0 {
		return
	}
	a, err := f.deps.Accounts.Authenticate(b.String("username"), b.String("password"))
	if err != nil {
		b.AddError("", msgInvalidLogin.Force(i18n.FromContext(ctx)))
		return
	}
	f.account = a
}

func (f *AccountLoginForm) Save(ctx context.Context) (any, error) {
	if err := auth.Login(ctx, f.deps.Sessions, f.account.Username); err != nil {
		return nil, err
	}
	f.deps.logger().Info("user logged in", zap.String("user", f.account.Username))
	return "/", nil
}

// ToJSON hands AJAX clients a bearer token when tokens are enabled.
func (f *AccountLoginForm) ToJSON(result any) any {
	out := map[string]any{"next": result, "username": f.account.Username}
	if f.deps.JWT == nil {
		return out
	}
	tok, err := f.deps.JWT.Issue(f.account.Username)
	if err != nil {
		f.deps.logger().Warn("issue token failed", zap.Error(err))
		return out
	}
	out["token"] = tok
	return out
}

// LogoutForm has no fields; a POST ends the session.
type LogoutForm struct {
	*form.Base
	sessions *session.Manager
}

func (d *Deps) newLogoutForm() form.Form {
	return &LogoutForm{Base: form.New(), sessions: d.Sessions}
}

func (f *LogoutForm) Save(context.Context) (any, error) {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := auth.Logout(w, r, f.sessions); err != nil && !errors.Is(err, auth.ErrNoSession) {
			http.Error(w, "logout failed", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}), nil
}
