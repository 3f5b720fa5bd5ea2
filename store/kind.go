package store

import (
	cerrors "github.com/ciftools/linguist/errors"
	"github.com/ciftools/linguist/value"
)

// Storage kind codes. These are a stable on-disk encoding independent of
// value.Kind's own iota values, since a schema persisted across a restart
// should not shift meaning if value.Kind's declaration order ever changes.
const (
	unknownKind       = 1
	notApplicableKind = 2
	characterKind     = 3
	numberKind        = 4
	listKind          = 5
	tableKind         = 6
)

func kindToStorage(k value.Kind) (int, error) {
	switch k {
	case value.Unknown:
		return unknownKind, nil
	case value.NotApplicable:
		return notApplicableKind, nil
	case value.Character:
		return characterKind, nil
	case value.Number:
		return numberKind, nil
	case value.List:
		return listKind, nil
	case value.Table:
		return tableKind, nil
	default:
		return 0, cerrors.New(cerrors.InternalError, "unrecognized value kind %v", k)
	}
}

func storageToKind(k int) (value.Kind, error) {
	switch k {
	case unknownKind:
		return value.Unknown, nil
	case notApplicableKind:
		return value.NotApplicable, nil
	case characterKind:
		return value.Character, nil
	case numberKind:
		return value.Number, nil
	case listKind:
		return value.List, nil
	case tableKind:
		return value.Table, nil
	default:
		return 0, cerrors.New(cerrors.InternalError, "unrecognized stored kind %d", k)
	}
}
