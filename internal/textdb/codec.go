package textdb

// Delimiter separates fields within a stored line. Field values must not
// contain it; there is no escaping.
const Delimiter = "|"

// Record is implemented by types stored in a [Table] or [CachedTable].
type Record interface {
	// RecordID returns the record's primary key.
	RecordID() int64
}

// Codec translates between a record and its single-line representation.
//
// Encode writes fields in the record type's fixed order, separated by
// [Delimiter], without a trailing newline. Decode parses one line back,
// returning a [DecodeError] for lines with too few fields or fields that
// fail to parse. An optional field is encoded as an empty field when
// absent, never omitted.
type Codec[T Record] interface {
	Encode(T) string
	Decode(line string) (T, error)
}
