// Package history persists a capped, newest-first log of completed reviews
// and derives aggregate statistics from it.
//
// Two [Store] backends exist. [FileStore] keeps the whole history in one JSON
// document and is the default. [PostgresStore] keeps it in a reviews table
// whose schema is managed by embedded golang-migrate migrations. Both hold at
// most [MaxRecords] records and drop the oldest first.
//
// Scores are read textually from review text by [ParseScore]; a review that
// carries no parseable "SCORE: NN/100" line does not count toward the average.
package history
