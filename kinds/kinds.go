// Package kinds encodes the element taxonomy as packed uint64 values so kind
// checks stay allocation free. A kind carries its own id in the low byte and
// the ids of its bases in the bytes above it.
package kinds

const (
	length   = 64
	idLength = 8
	depthMax = length / idLength
	idMask   = (1 << idLength) - 1
)

func Kind(id uint64, bases ...uint64) uint64 {
	id = id & idMask
	ids := make(map[uint64]struct{})

	for _, base := range bases {
		for j := 0; j < depthMax; j++ {
			baseId := (base >> (idLength * j)) & idMask
			if baseId == 0 {
				break
			}
			if _, ok := ids[baseId]; !ok {
				ids[baseId] = struct{}{}
				id |= baseId << (idLength * len(ids))
			}
		}
	}
	return id
}

// IsKind reports whether kind matches any of the given bases, directly or
// through its base chain.
func IsKind(kind uint64, bases ...uint64) bool {
	for _, base := range bases {
		baseId := base & idMask
		if kind == baseId {
			return true
		}
		for i := 0; i < depthMax; i++ {
			currentId := (kind >> (idLength * i)) & idMask
			if currentId == baseId {
				return true
			}
		}
	}
	return false
}

var (
	Null    = Kind(0)
	Element = Kind(1)
	Machine = Kind(2, Element)
	State   = Kind(3, Element)

	// A rule is tagged with the shape of its predicate once normalization has
	// run: Guarded carries a callable, Const a constant truth value.
	Rule    = Kind(4, Element)
	Guarded = Kind(5, Rule)
	Const   = Kind(6, Rule)

	// Behaviors are the callable units attached to lifecycle hooks.
	Behavior = Kind(7, Element)
	Entry    = Kind(8, Behavior)
	Body     = Kind(9, Behavior)
	Exit     = Kind(10, Behavior)
	Effect   = Kind(11, Behavior)
)
