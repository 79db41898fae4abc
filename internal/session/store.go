package session

// Record is the only durable client state: the access token plus a few
// cached profile fields and the UI theme preference. Everything else
// (lists, filters, pagination) is session-transient.
type Record struct {
	AccessToken string `json:"accessToken"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Theme       string `json:"theme"`
}

func (r Record) Authenticated() bool {
	return r.AccessToken != ""
}

// Store persists the session record. Implementations must notify
// subscribers after every successful mutation.
type Store interface {
	Load() (Record, error)
	SetToken(token string) error
	SetProfile(firstName, lastName string) error
	SetTheme(theme string) error
	Clear() error
	Subscribe(fn func(Record))
}

// notifier fans a changed record out to subscribers. Not safe for
// concurrent Subscribe after the store is in use; register subscribers
// during setup.
type notifier struct {
	subs []func(Record)
}

func (n *notifier) Subscribe(fn func(Record)) {
	n.subs = append(n.subs, fn)
}

func (n *notifier) publish(rec Record) {
	for _, fn := range n.subs {
		fn(rec)
	}
}
