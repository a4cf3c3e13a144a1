// Package database wraps GORM with connection retries, pool settings, a
// logger adapter and error translation to AppError.
//
// Production uses PostgreSQL (gorm.io/driver/postgres); development and
// tests use the pure-Go SQLite driver (github.com/glebarez/sqlite).
//
// Every model embeds BaseModel and therefore satisfies Entity:
//
//	type Article struct {
//	    database.BaseModel
//	    Title string `json:"title"`
//	}
//
//	var _ database.Entity = (*Article)(nil)
package database
