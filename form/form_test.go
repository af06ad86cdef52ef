package form

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dalemusser/fhurl/i18n"
	"github.com/dalemusser/fhurl/serialize"
)

type loginForm struct {
	*Base
}

func newLoginForm() *loginForm {
	return &loginForm{Base: New(
		TextField("username", "max=100"),
		PasswordField("password", "max=100"),
		Field{Name: "remember_me", Kind: Bool},
	)}
}

func (f *loginForm) Save(ctx context.Context) (any, error) { return "/", nil }

// Clean rejects a password equal to the username.
func (f *loginForm) Clean(ctx context.Context, b *Base) {
	if b.String("username") != "" && b.String("username") == b.String("password") {
		b.AddError("", "Password must differ from username.")
	}
}

func TestValidate_EmptySubmission(t *testing.T) {
	f := newLoginForm()
	f.Bind(nil)

	assert.False(t, f.Validate(context.Background()))
	assert.Equal(t, map[string][]string{
		"username": {"This field is required."},
		"password": {"This field is required."},
	}, f.Errors())
}

func TestValidate_Unbound(t *testing.T) {
	f := newLoginForm()
	assert.False(t, f.Validate(context.Background()))
	assert.Empty(t, f.Errors())
}

func TestValidate_Cleaned(t *testing.T) {
	f := newLoginForm()
	f.Bind(url.Values{"username": {"  john "}, "password": {" asd "}, "remember_me": {"on"}})

	require.True(t, f.Validate(context.Background()))
	assert.Equal(t, "john", f.Cleaned("username"))
	assert.Equal(t, " asd ", f.Cleaned("password"), "passwords are not trimmed")
	assert.Equal(t, true, f.Cleaned("remember_me"))
	assert.True(t, f.IsValid(context.Background()))
}

func TestValidate_CleanHookNeedsAdopt(t *testing.T) {
	data := url.Values{"username": {"same"}, "password": {"same"}}

	f := newLoginForm()
	f.Bind(data)
	assert.True(t, f.Validate(context.Background()), "Clean is not reachable before Adopt")

	g := newLoginForm()
	Adopt(g)
	g.Bind(data)
	assert.False(t, g.Validate(context.Background()))
	assert.Equal(t, []string{"Password must differ from username."}, g.NonFieldErrors())
}

func TestValidate_Kinds(t *testing.T) {
	b := New(
		Field{Name: "age", Kind: Int, Rules: "gte=18"},
		Field{Name: "ratio", Kind: Float},
		Field{Name: "email", Kind: Email},
		Field{Name: "born", Kind: Date},
		Field{Name: "at", Kind: DateTime},
		Field{Name: "color", Kind: Choice, Choices: []Option{{Value: "red"}, {Value: "blue"}}},
		Field{Name: "nick", Kind: Text, Rules: "min=3"},
		Field{Name: "agree", Kind: Bool, Required: true},
	)
	b.Bind(url.Values{
		"age":   {"abc"},
		"ratio": {"x"},
		"email": {"not-an-email"},
		"born":  {"2024-13-01"},
		"at":    {"yesterday"},
		"color": {"green"},
		"nick":  {"ab"},
	})

	assert.False(t, b.Validate(context.Background()))
	errs := b.Errors()
	assert.Equal(t, []string{"Enter a whole number."}, errs["age"])
	assert.Equal(t, []string{"Enter a number."}, errs["ratio"])
	assert.Equal(t, []string{"Enter a valid email address."}, errs["email"])
	assert.Equal(t, []string{"Enter a valid date."}, errs["born"])
	assert.Equal(t, []string{"Enter a valid date/time."}, errs["at"])
	assert.Equal(t, []string{"Select a valid choice. That choice is not one of the available choices."}, errs["color"])
	assert.Equal(t, []string{"Ensure this value has at least 3 characters."}, errs["nick"])
	assert.Equal(t, []string{"This field is required."}, errs["agree"])

	b.Bind(url.Values{
		"age":   {"17"},
		"born":  {"1990-05-04"},
		"at":    {"2024-01-02T03:04"},
		"color": {"red"},
		"agree": {"1"},
	})
	assert.False(t, b.Validate(context.Background()))
	assert.Equal(t, []string{"Ensure this value is greater than or equal to 18."}, b.Errors()["age"])
	assert.Equal(t, serialize.DateOf(time.Date(1990, 5, 4, 0, 0, 0, 0, time.UTC)), b.Cleaned("born"))
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC), b.Cleaned("at"))
	assert.Equal(t, "red", b.Cleaned("color"))
	assert.Nil(t, b.Cleaned("ratio"), "blank optional number")
	assert.Equal(t, "", b.Cleaned("nick"))
}

func TestValidate_LocalizedRequired(t *testing.T) {
	bundle := i18n.NewBundle("en")
	bundle.AddMessages("fr", map[string]string{"validate.required": "Ce champ est obligatoire."})
	ctx := i18n.WithLocalizer(context.Background(), bundle.Localizer("fr"))

	f := newLoginForm()
	f.Bind(url.Values{"username": {"john"}})
	f.Validate(ctx)
	assert.Equal(t, []string{"Ce champ est obligatoire."}, f.Errors()["password"])
}

func TestAddError(t *testing.T) {
	f := newLoginForm()
	f.Bind(url.Values{"username": {"john"}, "password": {"asd"}})
	require.True(t, f.Validate(context.Background()))

	f.AddError("username", "Taken.")
	assert.Equal(t, []string{"Taken."}, f.FieldErrors("username"))
	assert.NotContains(t, f.CleanedData(), "username")
	assert.Equal(t, "", f.String("username"))
}

func TestDescribe(t *testing.T) {
	f := newLoginForm()
	f.SetInitial("username", "form-level")
	f.SetInitial("password", "secret")
	f.Initialize(map[string]any{"username": "jack"})

	d := Describe(f)
	require.Contains(t, d, "username")
	assert.Equal(t, "Username", d["username"].Label)
	assert.True(t, d["username"].Required)
	assert.Equal(t, "jack", d["username"].Initial, "field initial wins")
	assert.Equal(t, "secret", d["password"].Initial)
	assert.Equal(t, "Remember Me", d["remember_me"].Label)
	assert.False(t, d["remember_me"].HasInitial)
}

func TestDescribe_JSON(t *testing.T) {
	f := &loginForm{Base: New(TextField("username", ""), PasswordField("password", ""))}
	f.Initialize(map[string]any{"username": "jack"})

	first, err := serialize.Marshal(Describe(f))
	require.NoError(t, err)
	second, err := serialize.Marshal(Describe(f))
	require.NoError(t, err)

	assert.Equal(t, `{"password":{"help_text":"","label":"Password","required":true},`+
		`"username":{"help_text":"","initial":"jack","label":"Username","required":true}}`, string(first))
	assert.Equal(t, first, second)
}

func TestDescribe_LazyLabel(t *testing.T) {
	bundle := i18n.NewBundle("en")
	bundle.AddMessages("fr", map[string]string{"label.username": "nom utilisateur"})

	f := &loginForm{Base: New(TextField("username", "").WithLabel(i18n.LazyDefault("label.username", "user name")))}

	out, err := serialize.Marshal(Describe(f), serialize.WithLocalizer(bundle.Localizer("fr")))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"label":"Nom Utilisateur"`)

	out, err = serialize.Marshal(Describe(f))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"label":"User Name"`)
}

func TestBoundFields(t *testing.T) {
	f := newLoginForm()
	f.Initialize(map[string]any{"username": "jack"})

	bf := f.BoundFields()
	require.Len(t, bf, 3)
	assert.Equal(t, "jack", bf[0].Value)
	assert.Equal(t, "id_username", bf[0].ID)
	assert.Equal(t, "password", bf[1].Type)
	assert.Equal(t, "checkbox", bf[2].Type)

	f.Bind(url.Values{"username": {"john"}, "password": {"hunter2"}})
	f.Validate(context.Background())
	bf = f.BoundFields()
	assert.Equal(t, "john", bf[0].Value)
	assert.Equal(t, "", bf[1].Value, "passwords are never echoed")
	assert.Empty(t, bf[0].Errors)
}

func TestRequestReceiver(t *testing.T) {
	f := newLoginForm()
	var rr RequestReceiver = f
	req := httptest.NewRequest(http.MethodGet, "/login/", nil)
	rr.SetRequest(req)
	assert.Same(t, req, f.Request())
}

type account struct {
	Name     string `form:"username"`
	Email    string
	Age      int
	internal string
}

func TestInitializeWithObject(t *testing.T) {
	b := New(TextField("username", ""), Field{Name: "email", Kind: Email}, Field{Name: "nick"})
	acct := &account{Name: "jack", Email: "jack@example.com", internal: "x"}

	require.NoError(t, b.InitializeWithObject(acct))
	assert.Equal(t, "jack", b.InitialValue("username"))
	assert.Equal(t, "jack@example.com", b.InitialValue("email"))

	require.NoError(t, b.InitializeWithObject(acct, "nick=username"))
	assert.Equal(t, "jack", b.InitialValue("nick"))

	assert.Error(t, b.InitializeWithObject(acct, "missing"))
	assert.ErrorIs(t, b.InitializeWithObject(42), ErrNotStruct)
}

func TestUpdateObject(t *testing.T) {
	b := New(TextField("username", ""), Field{Name: "age", Kind: Int}, Field{Name: "email", Kind: Email})
	b.Bind(url.Values{"username": {"jill"}, "age": {"31"}, "email": {"jill@example.com"}})
	require.True(t, b.Validate(context.Background()))

	var acct account
	require.NoError(t, b.UpdateObject(&acct))
	assert.Equal(t, "jill", acct.Name)
	assert.Equal(t, 31, acct.Age)
	assert.Equal(t, "jill@example.com", acct.Email)

	var other account
	require.NoError(t, b.UpdateObject(&other, "Email=username"))
	assert.Equal(t, "jill", other.Email)

	assert.ErrorIs(t, b.UpdateObject(acct), ErrNotStruct)
	assert.Error(t, b.UpdateObject(&acct, "Age=username"))
}

func TestInitOutcome(t *testing.T) {
	assert.True(t, Continue().IsContinue())
	assert.True(t, NotFound().IsNotFound())
	assert.True(t, RespondWith(nil).IsContinue())

	h := http.NotFoundHandler()
	o := RespondWith(h)
	assert.False(t, o.IsContinue())
	assert.False(t, o.IsNotFound())
	assert.NotNil(t, o.Response())
}
