// Copyright 2017-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package collection

import (
	"fmt"
)

// MarshalText returns the wire-format code for a validation error
// kind.
func (kind ErrorKind) MarshalText() ([]byte, error) {
	switch kind {
	case UnknownParameter:
		return []byte("unknown_parameter"), nil
	case InvalidSortField:
		return []byte("invalid_sort_field"), nil
	case PageSizeTooLarge:
		return []byte("page_size_too_large"), nil
	case UnknownField:
		return []byte("unknown_field"), nil
	case InvalidPageValue:
		return []byte("invalid_page_value"), nil
	default:
		return nil, fmt.Errorf("invalid error kind (marshal, %+v)", kind)
	}
}

// UnmarshalText populates a validation error kind from its wire-format
// code.
func (kind *ErrorKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "unknown_parameter":
		*kind = UnknownParameter
	case "invalid_sort_field":
		*kind = InvalidSortField
	case "page_size_too_large":
		*kind = PageSizeTooLarge
	case "unknown_field":
		*kind = UnknownField
	case "invalid_page_value":
		*kind = InvalidPageValue
	default:
		return fmt.Errorf("invalid error kind (unmarshal, %+v)", string(text))
	}
	return nil
}

// String renders a sort key in the query-string form, with a leading
// hyphen for descending keys.
func (key SortKey) String() string {
	if key.Descending {
		return "-" + key.Field
	}
	return key.Field
}
