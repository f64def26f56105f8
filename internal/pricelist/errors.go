package pricelist

import "errors"

var (
	// ErrNotFound is returned when a price list or price list item doesn't exist.
	ErrNotFound = errors.New("pricelist: not found")

	// ErrNameRequired is returned when a price list is saved without a name.
	ErrNameRequired = errors.New("pricelist: name is required")

	// ErrNameTooLong is returned when a name exceeds the 50 character limit.
	ErrNameTooLong = errors.New("pricelist: name exceeds 50 characters")

	// ErrInvalidDate is returned when a non-empty start or end date fails to
	// parse as YYYY-MM-DD.
	ErrInvalidDate = errors.New("pricelist: invalid date")

	// ErrUnknownBundle is returned when an item or list carries a type with no
	// registered purchased-entity resolver.
	ErrUnknownBundle = errors.New("pricelist: unknown bundle type")

	// ErrPurchasedEntityRequired is returned when an item is saved without a
	// purchased entity reference.
	ErrPurchasedEntityRequired = errors.New("pricelist: purchased entity is required")

	// ErrPurchasedEntityNotFound is returned when an item references a catalog
	// entry that cannot be resolved.
	ErrPurchasedEntityNotFound = errors.New("pricelist: purchased entity not found")

	// ErrCurrencyRequired is returned when a price amount is set without a currency.
	ErrCurrencyRequired = errors.New("pricelist: price currency is required")
)
