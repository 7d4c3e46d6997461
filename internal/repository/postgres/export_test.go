package postgres

// Fixtures shared with the usecase-level integration tests in postgres_test.
var (
	StartRepo   = startRepo
	SeedProject = seedProject
)

const (
	LeadID     = lead
	DevID      = dev
	ReporterID = reporter
)
