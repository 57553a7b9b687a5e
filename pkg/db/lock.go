package db

import "gorm.io/gorm"

// LockingSuffix returns the row-locking clause for dialects that support it.
// SQLite has no SELECT ... FOR UPDATE; callers fall back to the bare re-read
// there.
func LockingSuffix(gdb *gorm.DB) string {
	if gdb == nil || gdb.Dialector == nil {
		return ""
	}
	switch gdb.Dialector.Name() {
	case "postgres", "mysql":
		return " FOR UPDATE"
	default:
		return ""
	}
}
