package grantee

// logr verbosity conventions shared across the decorators in this package:
// mutations log at levelMutate, pure queries (none of which log today) would
// use levelQuery.
const (
	levelMutate = 4
	levelQuery  = 6
)
