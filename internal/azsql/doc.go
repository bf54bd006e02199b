// Package azsql connects to Azure SQL Database and executes SQL against it.
//
// The central type is ConnectionManager: one instance per target database,
// owned serially by a single caller for the life of the process. It selects
// an authentication method from credential presence (token-based passwordless
// via Entra ID, or username/password), establishes the connection with a
// bounded fixed-delay retry loop, and exposes a parameterized execution
// primitive plus table-level read/write helpers on top of it.
//
// The transport boundary is the Driver interface; the production
// implementation wraps microsoft/go-mssqldb. Driver errors carry an explicit
// kind so the retry loop only reacts to transient transport failures.
package azsql
