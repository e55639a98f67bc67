package repository

import "context"

// TransactionManager defines the interface for managing database transactions.
// This allows the use case layer to handle transactions without depending on a
// specific DB driver like GORM.
type TransactionManager interface {
	// Execute runs a function within a database transaction. If the function
	// returns an error, the transaction is rolled back. Otherwise, it's
	// committed. All repository operations within the function use the same
	// database transaction.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory provides repository instances bound to one transaction,
// ensuring all operations inside it share a single database connection.
type RepositoryFactory interface {
	// UserRepo returns a UserRepository bound to the current transaction.
	UserRepo() UserRepository

	// SessionRepo returns a SessionRepository bound to the current transaction.
	SessionRepo() SessionRepository

	// ResetTokenRepo returns a ResetTokenRepository bound to the current transaction.
	ResetTokenRepo() ResetTokenRepository
}
