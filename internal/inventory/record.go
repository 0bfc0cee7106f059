package inventory

// Record is one flat inventory row. Records are immutable once produced
// and carry their own provenance (organization, project, ...).
//
// Header and Row drive tabular export: Header returns the column names and
// Row the values, in matching order. SortKey orders records for stable,
// reproducible export; aggregation itself guarantees no order.
type Record interface {
	Header() []string
	Row() []string
	SortKey() string
}
