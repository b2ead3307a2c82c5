package formpatch

import (
	"github.com/Altinn/formpatch/document"
)

// DefaultRowIDKey is the reserved object key that holds a row's identity.
const DefaultRowIDKey = "altinnRowId"

// RowIdentity extracts the identity of a row. It returns false for objects
// that carry no identity. Identities are opaque and only compared for
// equality.
type RowIdentity func(row *document.Object) (document.Value, bool)

// KeyIdentity returns a RowIdentity that reads the member key. Members holding
// null are not identities.
func KeyIdentity(key string) RowIdentity {
	return func(row *document.Object) (document.Value, bool) {
		v, ok := row.Get(key)
		if !ok || v.Kind() == document.KindNull {
			return nil, false
		}
		return v, true
	}
}
