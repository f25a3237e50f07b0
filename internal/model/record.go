package model

import "sort"

// Record is one persisted domain entity, addressed by (kind, id).
// Implementations are plain structs; backends serialize them as JSON
// and decode through the kind registry.
type Record interface {
	Kind() string
	RecordID() string
	SetRecordID(id string)
}

// Record kinds known to the kind registry.
const (
	KindListing      = "listing"
	KindUser         = "user"
	KindWallet       = "wallet"
	KindSubscription = "subscription"
)

var registry = map[string]func() Record{}

// RegisterKind registers a factory that produces an empty record of the
// given kind. Called from init() in each record file; backends use it to
// decode rows without knowing concrete types.
func RegisterKind(kind string, fn func() Record) {
	registry[kind] = fn
}

// NewOfKind returns an empty record of the given kind, or false when the
// kind was never registered.
func NewOfKind(kind string) (Record, bool) {
	fn, ok := registry[kind]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// Kinds lists registered record kinds in stable order.
func Kinds() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
