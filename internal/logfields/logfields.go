package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field names shared across packages.
const (
	KeyMode     = "mode"
	KeyEndsAt   = "ends_at"
	KeyKey      = "key"
	KeyPath     = "path"
	KeyInstance = "instance"
	KeyRole     = "role"
	KeyError    = "error"
)

func Mode(mode string) slog.Attr { return slog.String(KeyMode, mode) }
func Key(key string) slog.Attr { return slog.String(KeyKey, key) }
func Path(path string) slog.Attr { return slog.String(KeyPath, path) }
func Instance(id string) slog.Attr { return slog.String(KeyInstance, id) }
func Role(role string) slog.Attr { return slog.String(KeyRole, role) }

// EndsAt logs a deadline as epoch milliseconds, the unit it is persisted in.
func EndsAt(endsAt time.Time) slog.Attr {
	if endsAt.IsZero() {
		return slog.Int64(KeyEndsAt, 0)
	}
	return slog.Int64(KeyEndsAt, endsAt.UnixMilli())
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
