package interfaces

import "github.com/goliatone/go-sitepublish/pkg/storage"

// StorageProvider is the SQL-style provider used by the table-backed artifact store.
type StorageProvider = storage.Provider

// Rows aliases storage.Rows.
type Rows = storage.Rows

// Result aliases storage.Result.
type Result = storage.Result

// Transaction aliases storage.Transaction.
type Transaction = storage.Transaction
