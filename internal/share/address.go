package share

// Address is the navigable location whose query string mirrors the state
// of a table. Boards read it once on load and write it after every change.
type Address interface {
	Query() string
	SetQuery(query string)
}

// MemoryAddress keeps the query string in memory.
type MemoryAddress struct {
	query string
	// Writes counts SetQuery calls.
	Writes int
}

func NewMemoryAddress(query string) *MemoryAddress {
	return &MemoryAddress{query: query}
}

func (a *MemoryAddress) Query() string { return a.query }

func (a *MemoryAddress) SetQuery(query string) {
	a.query = query
	a.Writes++
}
