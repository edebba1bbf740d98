package postal

import "errors"

// ErrDatasetUnavailable is returned when the reference table cannot be
// opened, read or understood.
var ErrDatasetUnavailable = errors.New("postal code dataset unavailable")

// ErrNotFound is returned by index lookups for codes absent from the table.
var ErrNotFound = errors.New("postal code not found")
