package catalog

// Supermarket mirrors the /supermarket payload.
type Supermarket struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Location *string `json:"location"`
	Image    string  `json:"image,omitempty"`
}

// Lookup resolves supermarkets by id. Products only carry the foreign key.
type Lookup map[int64]Supermarket

func NewLookup(stores []Supermarket) Lookup {
	l := make(Lookup, len(stores))
	for _, s := range stores {
		l[s.ID] = s
	}
	return l
}

// Get returns the supermarket with the given id, or nil when unknown.
func (l Lookup) Get(id int64) *Supermarket {
	s, ok := l[id]
	if !ok {
		return nil
	}
	return &s
}

// Name returns the supermarket name, or an empty string when unknown.
func (l Lookup) Name(id int64) string {
	if s, ok := l[id]; ok {
		return s.Name
	}
	return ""
}
