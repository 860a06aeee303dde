package constants

const (
	PaginationDefaultLimit = 50
	PaginationMaxLimit     = 500
)
