package demo

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/fhurl/form"
	"github.com/dalemusser/fhurl/i18n"
)

// Message is one stored contact submission.
type Message struct {
	ID      int
	Name    string
	Email   string
	Subject string
	Order   int64
	Body    string
	CopyMe  bool
	Sent    time.Time
}

// Inbox collects contact messages and newsletter subscriptions in memory.
type Inbox struct {
	mu          sync.Mutex
	messages    []Message
	subscribers map[string]time.Time
}

func NewInbox() *Inbox {
	return &Inbox{subscribers: make(map[string]time.Time)}
}

func (in *Inbox) add(m Message) int {
	in.mu.Lock()
	defer in.mu.Unlock()
	m.ID = len(in.messages) + 1
	in.messages = append(in.messages, m)
	return m.ID
}

// subscribe reports whether email is new.
func (in *Inbox) subscribe(email string, at time.Time) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if _, ok := in.subscribers[email]; ok {
		return false
	}
	in.subscribers[email] = at
	return true
}

// Messages returns a copy of the stored messages.
func (in *Inbox) Messages() []Message {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]Message(nil), in.messages...)
}

// Subscribed reports whether email is on the newsletter list.
func (in *Inbox) Subscribed(email string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	_, ok := in.subscribers[email]
	return ok
}

var msgOrderRequired = i18n.LazyDefault("contact.order_required", "Support requests need an order number.")

// ContactForm sends a message to the site owners.
type ContactForm struct {
	*form.Base
	inbox *Inbox
}

func (d *Deps) newContactForm() form.Form {
	return &ContactForm{
		Base: form.New(
			form.TextField("name", "max=80").WithLabel(i18n.LazyDefault("contact.name", "name")),
			form.Field{Name: "email", Kind: form.Email, Required: true, Label: i18n.LazyDefault("contact.email", "email")},
			form.Field{
				Name:     "subject",
				Kind:     form.Choice,
				Required: true,
				Label:    i18n.LazyDefault("contact.subject", "subject"),
				Initial:  "general",
				Choices: []form.Option{
					{Value: "general", Label: i18n.LazyDefault("contact.subject_general", "General question")},
					{Value: "support", Label: i18n.LazyDefault("contact.subject_support", "Support")},
					{Value: "sales", Label: i18n.LazyDefault("contact.subject_sales", "Sales")},
				},
			},
			form.Field{
				Name:     "order",
				Kind:     form.Int,
				Label:    i18n.LazyDefault("contact.order", "order number"),
				HelpText: i18n.LazyDefault("contact.order_help", "Only needed for support requests."),
				Rules:    "min=1",
			},
			form.Field{Name: "message", Kind: form.Text, Required: true, Rules: "min=10,max=2000", Widget: "textarea",
				Label: i18n.LazyDefault("contact.message", "message")},
			form.Field{Name: "copy_me", Kind: form.Bool, Label: i18n.LazyDefault("contact.copy_me", "send me a copy")},
		),
		inbox: d.Inbox,
	}
}

func (f *ContactForm) Clean(ctx context.Context, b *form.Base) {
	if b.Cleaned("subject") == "support" && b.Cleaned("order") == nil {
		if len(b.FieldErrors("order")) == 0 {
			b.AddError("order", msgOrderRequired.Force(i18n.FromContext(ctx)))
		}
	}
}

func (f *ContactForm) Save(context.Context) (any, error) {
	m := Message{
		Name:    f.String("name"),
		Email:   f.String("email"),
		Subject: f.String("subject"),
		Body:    f.String("message"),
		Sent:    time.Now().UTC(),
	}
	if n, ok := f.Cleaned("order").(int64); ok {
		m.Order = n
	}
	m.CopyMe, _ = f.Cleaned("copy_me").(bool)
	return f.inbox.add(m), nil
}

func (f *ContactForm) ToJSON(result any) any {
	return map[string]any{"id": result}
}

// NewsletterForm subscribes an address to the newsletter.
type NewsletterForm struct {
	*form.Base
	inbox *Inbox
}

func (d *Deps) newNewsletterForm() form.Form {
	return &NewsletterForm{
		Base: form.New(
			form.Field{Name: "email", Kind: form.Email, Required: true, Label: i18n.LazyDefault("newsletter.email", "email")},
		),
		inbox: d.Inbox,
	}
}

func (f *NewsletterForm) Save(context.Context) (any, error) {
	return map[string]any{"new": f.inbox.subscribe(f.String("email"), time.Now().UTC())}, nil
}
